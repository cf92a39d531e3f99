// Copyright 2025 Ryan Roden-Corrent
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commit

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// 📝 Write prints the report for the console, after the UI has torn down.
func (r Report) Write(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n",
		color.New(color.FgGreen).Sprint("✓"),
		fmt.Sprintf("%d file(s) changed", r.FilesChanged))
	if r.FilesSkipped > 0 {
		fmt.Fprintf(w, "%s %s\n",
			color.New(color.FgYellow).Sprint("-"),
			fmt.Sprintf("%d file(s) skipped", r.FilesSkipped))
	}
	for _, fe := range r.Errors {
		fmt.Fprintf(w, "%s %s: %v\n",
			color.New(color.FgRed).Sprint("✗"),
			fe.Path, fe.Err)
	}
}

// Ok reports whether the commit completed without errors.
func (r Report) Ok() bool {
	return len(r.Errors) == 0
}
