package config

import (
	"flag"
	"os"
	"strings"
)

// parses CLI flags for the terminal client
func ParseClientFlags() Flags {
	return parseClientFlags(os.Args[1:])
}

func parseClientFlags(args []string) Flags {
	defaults := DefaultClientFlags()

	fs := flag.NewFlagSet("boomline", flag.ExitOnError)
	endpoint := fs.String("endpoint", defaults.Endpoint, "base URL of the boomline API")
	ledgerPath := fs.String("ledger", defaults.LedgerPath, "path to the local history and usage file")
	contentType := fs.String("type", defaults.ContentType, "initial content type")
	quota := fs.Int("quota", defaults.Quota, "local daily generation quota (0 disables)")
	clientID := fs.String("client-id", defaults.ClientID, "identifier sent to the API as X-Client-ID")
	language := fs.String("language", defaults.Language, "language generated content is written in")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{
		Endpoint:    strings.TrimRight(*endpoint, "/"),
		LedgerPath:  *ledgerPath,
		ContentType: *contentType,
		Quota:       *quota,
		ClientID:    *clientID,
		Language:    *language,
	}
}

// returns default flags for the terminal client
func DefaultClientFlags() Flags {
	endpoint := os.Getenv("BOOMLINE_API_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	clientID := os.Getenv("BOOMLINE_CLIENT_ID")
	if clientID == "" {
		clientID = "tui"
		if host, err := os.Hostname(); err == nil && host != "" {
			clientID = "tui-" + host
		}
	}

	return Flags{
		Endpoint:    endpoint,
		LedgerPath:  ".boomline/ledger.json",
		ContentType: "Instagram Caption",
		Quota:       5,
		ClientID:    clientID,
		Language:    "en",
	}
}
