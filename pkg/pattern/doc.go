/*
Package pattern compiles the user's query into search artifacts.

	              +-----------+
	              |  Pattern  |
	              | (variant) |
	              +-----+-----+
	                    |
	       +-----------+-----------+
	       |                       |
	 +-----+-----+          +------+------+
	 |  Textual  |          | Structural  |
	 |  (regexp) |          | (tree pat.) |
	 +-----------+          +-------------+

🎯 Purpose:
- Classifies every find string as textual or structural (total rule: a `$`
  followed by an uppercase letter selects structural)
- Compiles textual patterns to RE2 regexps, surfacing diagnostics as
  CompileError without crashing
- Parses replacement templates: literals, $N / ${N}, $name / ${name},
  $$$NAME, $$ escapes
- Iterates occurrences with the zero-length advance rule so `a*` can never
  loop

📝 Design Philosophy:
A Pattern is immutable once compiled and shared by reference across all
worker goroutines; stale generations keep their old instance until they
unwind. Template expansion is total: unknown groups expand to nothing, so
the replacement box never errors while the user types.
*/
package pattern
