package api

import "net/http"

// Step runs in front of a handler. It returns the request to continue with,
// possibly carrying extra context, or an error that ends the request.
type Step func(http.ResponseWriter, *http.Request) (*http.Request, error)

// handlerFunc is an HTTP handler that reports failures instead of writing them.
type handlerFunc func(http.ResponseWriter, *http.Request) error

// chain runs steps in order and then h. The first error from any of them is
// written by the error mapper and nothing after it runs.
func (s *Server) chain(h handlerFunc, steps ...Step) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, step := range steps {
			next, err := step(w, r)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			r = next
		}
		if err := h(w, r); err != nil {
			s.writeError(w, r, err)
		}
	}
}
