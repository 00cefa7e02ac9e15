// ABOUTME: Fatal error formatting for the command line
// ABOUTME: Adds status and pretty-printed response body for API errors
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/salesseed/api"
	"github.com/harperreed/salesseed/events"
)

// FormatError renders err for stderr.
func FormatError(err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %v\n", err)

	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		fmt.Fprintf(&b, "  status: %d\n", reqErr.Status)
		if len(reqErr.Body) > 0 {
			body := strings.ReplaceAll(events.PrettyJSON(reqErr.Body), "\n", "\n  ")
			fmt.Fprintf(&b, "  body: %s\n", body)
		}
	}
	return b.String()
}
