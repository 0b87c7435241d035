package commands

import (
	"flag"
	"fmt"
	"strings"

	"optisheet/internal/source"
)

// sourceFlags are the flags selecting the table to load.
type sourceFlags struct {
	kind string
	url  string
	path string
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.kind, "source", "", "")
	fs.StringVar(&s.url, "url", "", "")
	fs.StringVar(&s.path, "path", "", "")
}

// request builds the load request. sheet and csv-url read --url, csv-file
// reads --path.
func (s *sourceFlags) request(credentialFile string) (source.Request, error) {
	if strings.TrimSpace(s.kind) == "" {
		return source.Request{}, fmt.Errorf("--source required (sheet, csv-url or csv-file)")
	}
	kind, err := source.ParseKind(s.kind)
	if err != nil {
		return source.Request{}, err
	}

	req := source.Request{Kind: kind, CredentialFile: credentialFile}
	switch kind {
	case source.CSVFile:
		if strings.TrimSpace(s.path) == "" {
			return source.Request{}, fmt.Errorf("--path required for source %s", kind)
		}
		req.Location = s.path
	default:
		if strings.TrimSpace(s.url) == "" {
			return source.Request{}, fmt.Errorf("--url required for source %s", kind)
		}
		req.Location = s.url
	}
	return req, nil
}
