// Package profile starts optional runtime profiling with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	lingo --pprof-mode cpu render greeting
//	go tool pprof -http=: "$XDG_CACHE_HOME/lingo/pprof/cpu.pprof"
//
// Without the tag, [Modes] is empty and [Config.Start] returns a no-op
// stopper, so callers never need their own build tags.
//
// The tagged build also registers the net/http/pprof handlers on
// [net/http.DefaultServeMux]; the serve command mounts them under
// /debug/pprof/.
package profile
