package router

import (
	"errors"
	"net/http"

	"gitlab.com/gitlab-org/fileroute/internal/httperrors"
	"gitlab.com/gitlab-org/fileroute/internal/logging"
	"gitlab.com/gitlab-org/fileroute/internal/reply"
	"gitlab.com/gitlab-org/fileroute/internal/route"
	"gitlab.com/gitlab-org/fileroute/metrics"
)

type middleware = func(http.Handler) http.Handler

// Handler builds the reply for a request whose path matched a route. vals
// holds the values extracted by the route's matchers, in order.
type Handler func(r *http.Request, vals route.Values) *reply.Reply

type entry struct {
	matcher route.Matcher
	handler Handler
}

// Router tries its routes in registration order. A route rejecting the path
// with route.NotFound passes the request on to the next route; a
// route.BadRequest rejection ends routing with a 400. Routes must all be
// registered before the Router serves requests.
type Router struct {
	routes  []entry
	handler http.Handler
}

// NewRouter creates a new Router. The given middlewares are executed in the
// given order before routing.
func NewRouter(middlewares ...middleware) *Router {
	s := &Router{}

	var handler http.Handler = http.HandlerFunc(s.dispatch)
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	s.handler = handler
	return s
}

// Handle registers a new route.
func (s *Router) Handle(matcher route.Matcher, handler Handler) {
	s.routes = append(s.routes, entry{matcher: matcher, handler: handler})
}

func (s *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Router) dispatch(w http.ResponseWriter, r *http.Request) {
	for _, e := range s.routes {
		c := route.NewCursor(r.URL.Path)
		var vals route.Values

		err := e.matcher.Match(c, &vals)
		switch {
		case err == nil:
			metrics.RouteMatches.WithLabelValues("matched").Inc()
			s.serve(w, r, e.handler, vals)
			return
		case route.IsNotFound(err):
			continue
		case route.IsBadRequest(err):
			metrics.RouteMatches.WithLabelValues("bad_request").Inc()
			logging.LogRequest(r).WithError(err).Debug("rejected request path")
			httperrors.Serve400(w)
			return
		default:
			httperrors.Serve500WithRequest(w, r, "route matching failed", err)
			return
		}
	}

	metrics.RouteMatches.WithLabelValues("not_found").Inc()
	httperrors.Serve404(w)
}

func (s *Router) serve(w http.ResponseWriter, r *http.Request, handler Handler, vals route.Values) {
	rep := handler(r, vals)
	if rep == nil {
		httperrors.Serve500WithRequest(w, r, "route handler returned no reply", errors.New("nil reply"))
		return
	}

	// Headers are already sent once the body fails; the transport closes
	// the connection on a short body.
	if err := rep.Send(w, r); err != nil {
		logging.LogRequest(r).WithError(err).Trace("response body interrupted")
	}
}
