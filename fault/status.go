package fault

import (
	"net/http"

	"github.com/pkg/errors"
)

// UnknownStatus is reported for failures that carry no kind.
const UnknownStatus = 520

const unknownMessage = "unknown error, please contact the network team"

var statusCodes = map[Kind]int{
	Timeout:           522,
	Connection:        523,
	SessionLimit:      509,
	Auth:              http.StatusNetworkAuthenticationRequired,
	RPC:               http.StatusBadRequest,
	Commit:            http.StatusInsufficientStorage,
	UnsupportedVendor: http.StatusNotImplemented,
	Configuration:     http.StatusBadRequest,
}

// StatusCode maps err to the status code reported to API clients.
func StatusCode(err error) int {
	if code, ok := statusCodes[KindOf(err)]; ok {
		return code
	}
	return UnknownStatus
}

// PublicMessage returns the text reported to API clients. Unclassified errors
// are replaced by a generic message so internal details do not leak.
func PublicMessage(err error) string {
	if !Classified(err) {
		return unknownMessage
	}
	var fe *Error
	_ = errors.As(err, &fe)
	return fe.Error()
}
