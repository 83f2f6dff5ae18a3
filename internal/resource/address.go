// Package resource resolves read-only addresses of the form
// container://<id>/<facet> into live engine reads. Two facets exist:
// stats, a single usage snapshot, and logs, a bounded tail. A malformed
// or foreign address is an UnsupportedResourceError; a well-formed
// address naming a container the engine does not know surfaces the
// engine's NotFoundError untouched.
package resource

import (
	"fmt"
	"strings"
)

const scheme = "container://"

// Facets a container address can expose.
const (
	FacetStats = "stats"
	FacetLogs  = "logs"
)

// Address is a parsed resource address.
type Address struct {
	ID    string
	Facet string
}

// URI renders the address back to wire form.
func (a Address) URI() string {
	return scheme + a.ID + "/" + a.Facet
}

// UnsupportedResourceError reports an address this server does not
// serve: a foreign scheme, a missing segment, or an unknown facet.
type UnsupportedResourceError struct {
	URI    string
	Detail string
}

func (e *UnsupportedResourceError) Error() string {
	return fmt.Sprintf("unsupported resource %q: %s", e.URI, e.Detail)
}

// ParseAddress splits container://<id>/<facet>. Both segments are taken
// verbatim; net/url would canonicalize the id segment, and container
// names are case-sensitive.
func ParseAddress(uri string) (Address, error) {
	rest, found := strings.CutPrefix(uri, scheme)
	if !found {
		return Address{}, &UnsupportedResourceError{URI: uri, Detail: "only container:// addresses are served"}
	}
	id, facet, found := strings.Cut(rest, "/")
	if id == "" {
		return Address{}, &UnsupportedResourceError{URI: uri, Detail: "missing container id"}
	}
	if !found || facet == "" {
		return Address{}, &UnsupportedResourceError{URI: uri, Detail: "missing facet, want stats or logs"}
	}
	if facet != FacetStats && facet != FacetLogs {
		return Address{}, &UnsupportedResourceError{URI: uri, Detail: fmt.Sprintf("unknown facet %q, want stats or logs", facet)}
	}
	return Address{ID: id, Facet: facet}, nil
}
