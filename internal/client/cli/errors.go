package cli

import (
	"errors"

	"github.com/dmitrijs2005/farmkeeper/internal/client/client"
	"github.com/dmitrijs2005/farmkeeper/internal/client/services"
)

var messages = map[string]string{
	"invalid_endpoint":         "The server address is not valid.",
	"endpoint_not_initialized": "No server address set; run \"endpoint set <ip|url>\" first.",
	"invalid_input":            "Please check your input.",
	"invalid_credentials":      "Wrong username/email or password.",
	"invalid_response_shape":   "The server sent an unexpected response.",
	"session_expired":          "Your session has expired; please log in again.",
	"network_timeout":          "The server did not answer in time.",
	"network_unavailable":      "The server cannot be reached.",
	"unauthorized":             "Not authorized.",
}

// Describe turns err into a message for the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) && statusErr.Detail != "" {
		return statusErr.Detail
	}

	if msg, ok := messages[client.Kind(err)]; ok {
		return msg + " (" + err.Error() + ")"
	}
	return err.Error()
}
