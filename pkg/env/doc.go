// Package env defines the host capability object injected into the auth
// bridge at construction time.
//
// Nothing in the core branches on "is this a browser or a server";
// instead, the clock, the document (global payload slot, meta tags, ready
// signal), and any other host facility arrive as capabilities that are
// trivially stubbed in a non-browser environment:
//
//	caps := env.Capabilities{
//	    Clock: env.SystemClock{},
//	    Doc:   env.NewMemoryDocument(),
//	}
package env
