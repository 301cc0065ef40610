package http

import (
	stdhttp "net/http"
	"net/http/pprof"

	"github.com/labstack/echo/v4"
)

// registerProfiling mounts the pprof handlers under /debug/pprof on g.
func registerProfiling(g *echo.Group) {
	pp := g.Group("/debug/pprof")
	pp.GET("/", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Index)))
	pp.GET("/cmdline", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Cmdline)))
	pp.GET("/profile", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Profile)))
	pp.GET("/symbol", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Symbol)))
	pp.GET("/trace", echo.WrapHandler(stdhttp.HandlerFunc(pprof.Trace)))
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		pp.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}
}
