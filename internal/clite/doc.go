// Package clite is a small declarative command dispatcher.
//
// A tool registers its options (typed fields) and commands (handlers) on a
// Builder. The resulting Descriptor parses a raw argument vector into an
// Invocation, binds option values onto the tool's fields and runs exactly one
// command. Flag and command spellings are derived from the registered field
// names (webUrl → --web-url, readFile → read-file) and matched
// case-insensitively with dashes and underscores ignored.
//
//	type tool struct{ count int }
//
//	func (t *tool) Register(b *clite.Builder) {
//		b.Int("count", &t.count, 1, "how many times")
//		b.Default("main", t.main)
//	}
//
//	os.Exit(clite.Run(ctx, &tool{}, os.Args[1:]))
package clite
