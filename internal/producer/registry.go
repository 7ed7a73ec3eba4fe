package producer

import (
	"fmt"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/tournamentconfig"
	"github.com/wonny/predictarena/pkg/httputil"
)

// FromConfig builds one producer per enabled forecaster, in roster order.
// File forecasters without an explicit inbox share defaultInbox.
func FromConfig(forecasters []tournamentconfig.ForecasterConfig, defaultInbox string, client *httputil.Client) ([]contracts.Producer, error) {
	out := make([]contracts.Producer, 0, len(forecasters))
	for _, f := range forecasters {
		switch f.Source {
		case tournamentconfig.SourceFile, "":
			inbox := f.Inbox
			if inbox == "" {
				inbox = defaultInbox
			}
			out = append(out, NewFileProducer(f.ID, f.DisplayName, inbox))
		case tournamentconfig.SourceHTTP:
			if client == nil {
				return nil, fmt.Errorf("forecaster %s: http source requires a client", f.ID)
			}
			out = append(out, NewHTTPProducer(f.ID, f.DisplayName, f.Endpoint, client))
		default:
			return nil, fmt.Errorf("forecaster %s: unknown source %q", f.ID, f.Source)
		}
	}
	return out, nil
}
