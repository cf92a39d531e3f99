package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcorre/lasr/pkg/matcher"
	"github.com/rcorre/lasr/pkg/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestMatcher(t *testing.T, find, replace string) *matcher.FileMatcher {
	t.Helper()
	p, err := pattern.Compile(find, false)
	require.NoError(t, err)
	return matcher.New(p, pattern.CompileReplacement(replace), 0)
}

func writeFiles(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	files := make([]string, n)
	for i := range files {
		files[i] = filepath.Join(dir, fmt.Sprintf("file%03d.txt", i))
		content := fmt.Sprintf("line one\nneedle %d\nline three\n", i)
		require.NoError(t, os.WriteFile(files[i], []byte(content), 0644))
	}
	return files
}

func TestJobEnumerationOrder(t *testing.T) {
	files := writeFiles(t, 100)

	job := New(Params{
		Matcher:    newTestMatcher(t, "needle", "thread"),
		Files:      files,
		Generation: 1,
		Workers:    8,
		ReorderCap: 4,
	})
	job.Start(context.Background())

	var got []matcher.FileResult
	for res := range job.Results() {
		got = append(got, res)
	}

	require.Len(t, got, len(files))
	for i, res := range got {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, files[i], res.Path)
		assert.Equal(t, uint64(1), res.Generation)
		assert.Len(t, res.Matches, 1)
	}
}

func TestJobSingleWorker(t *testing.T) {
	files := writeFiles(t, 10)

	job := New(Params{
		Matcher:    newTestMatcher(t, "needle", "thread"),
		Files:      files,
		Generation: 3,
		Workers:    1,
	})
	job.Start(context.Background())

	count := 0
	for res := range job.Results() {
		assert.Equal(t, count, res.Index)
		count++
	}
	assert.Equal(t, len(files), count)
}

func TestJobTinyReorderBuffer(t *testing.T) {
	// With a reorder cap of 1 and many workers, back-pressure forces
	// near-lockstep completion; order must still hold.
	files := writeFiles(t, 50)

	job := New(Params{
		Matcher:    newTestMatcher(t, "needle", "thread"),
		Files:      files,
		Generation: 1,
		Workers:    16,
		ReorderCap: 1,
	})
	job.Start(context.Background())

	prev := -1
	for res := range job.Results() {
		assert.Equal(t, prev+1, res.Index)
		prev = res.Index
	}
	assert.Equal(t, len(files)-1, prev)
}

func TestJobCancel(t *testing.T) {
	files := writeFiles(t, 200)

	job := New(Params{
		Matcher:    newTestMatcher(t, "needle", "thread"),
		Files:      files,
		Generation: 1,
		Workers:    2,
		ReorderCap: 2,
	})
	job.Start(context.Background())

	// Read a few results, then cancel; the stream must close promptly even
	// though nobody drains the remainder.
	got := 0
	for range job.Results() {
		got++
		if got == 3 {
			job.Cancel()
			break
		}
	}

	select {
	case <-time.After(5 * time.Second):
		t.Fatal("results channel did not close after cancel")
	case _, ok := <-job.Results():
		if ok {
			// One buffered result may still arrive; the next receive
			// must observe closure.
			for range job.Results() {
			}
		}
	}
}

func TestJobCancelBeforeRead(t *testing.T) {
	files := writeFiles(t, 100)

	job := New(Params{
		Matcher:    newTestMatcher(t, "needle", "thread"),
		Files:      files,
		Generation: 1,
		Workers:    4,
		ReorderCap: 2,
	})
	job.Start(context.Background())
	job.Cancel()

	// The channel must close without a consumer ever reading.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("results channel did not close after cancel")
		case _, ok := <-job.Results():
			if !ok {
				return
			}
		}
	}
}

func TestJobEmptyFileSet(t *testing.T) {
	job := New(Params{
		Matcher:    newTestMatcher(t, "needle", "thread"),
		Generation: 1,
		Workers:    2,
	})
	job.Start(context.Background())

	for range job.Results() {
		t.Fatal("no results expected")
	}
}

func TestJobReportsPerFileErrors(t *testing.T) {
	files := writeFiles(t, 3)
	missing := filepath.Join(t.TempDir(), "missing.txt")
	all := append([]string{files[0], missing}, files[1:]...)

	job := New(Params{
		Matcher:    newTestMatcher(t, "needle", "thread"),
		Files:      all,
		Generation: 1,
		Workers:    2,
	})
	job.Start(context.Background())

	var got []matcher.FileResult
	for res := range job.Results() {
		got = append(got, res)
	}

	// A read error is recorded on its FileResult; the other files scan.
	require.Len(t, got, 4)
	assert.NoError(t, got[0].Err)
	assert.Error(t, got[1].Err)
	assert.NoError(t, got[2].Err)
	assert.NoError(t, got[3].Err)
}
