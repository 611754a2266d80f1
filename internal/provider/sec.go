package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	secBaseURL     = "https://data.sec.gov"
	secArchivesURL = "https://www.sec.gov/Archives/edgar/data"
)

// RecentFiling is one row of the EDGAR "recent filings" columns.
type RecentFiling struct {
	Form            string
	FilingDate      string
	AccessionNumber string
	PrimaryDocument string
	Description     string
}

type Submissions struct {
	CIK    string
	Name   string
	Recent []RecentFiling
}

// SECProvider reads the EDGAR submissions index. EDGAR rejects requests
// without a contact User-Agent.
type SECProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
	health    *Health
}

func NewSECProvider(tracer trace.Tracer, client *http.Client, userAgent string, health *Health) *SECProvider {
	return &SECProvider{
		client:    client,
		baseURL:   secBaseURL,
		userAgent: userAgent,
		tracer:    tracer,
		health:    health,
	}
}

func (p *SECProvider) FetchSubmissions(ctx context.Context, cik string) (*Submissions, error) {
	ctx, span := p.tracer.Start(ctx, "sec.fetch-submissions")
	defer span.End()
	span.SetAttributes(attribute.String("cik", cik))

	padded, err := PadCIK(cik)
	if err != nil {
		return nil, err
	}

	body, err := fetchBody(ctx, p.client, "sec", fmt.Sprintf("%s/submissions/CIK%s.json", p.baseURL, padded), map[string]string{
		"User-Agent": p.userAgent,
		"Accept":     "application/json",
	})
	var raw struct {
		Name    string `json:"name"`
		Filings struct {
			Recent struct {
				Form                  []string `json:"form"`
				FilingDate            []string `json:"filingDate"`
				AccessionNumber       []string `json:"accessionNumber"`
				PrimaryDocument       []string `json:"primaryDocument"`
				PrimaryDocDescription []string `json:"primaryDocDescription"`
			} `json:"recent"`
		} `json:"filings"`
	}
	if err == nil {
		err = json.Unmarshal(body, &raw)
	}
	p.health.Record("sec", err)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions for %s: %w", cik, err)
	}

	recent := raw.Filings.Recent
	col := func(s []string, i int) string {
		if i < len(s) {
			return s[i]
		}
		return ""
	}
	out := &Submissions{CIK: strings.TrimLeft(padded, "0"), Name: raw.Name}
	for i, form := range recent.Form {
		out.Recent = append(out.Recent, RecentFiling{
			Form:            form,
			FilingDate:      col(recent.FilingDate, i),
			AccessionNumber: col(recent.AccessionNumber, i),
			PrimaryDocument: col(recent.PrimaryDocument, i),
			Description:     col(recent.PrimaryDocDescription, i),
		})
	}
	if len(out.Recent) == 0 {
		return nil, fmt.Errorf("fetch submissions for %s: %w", cik, ErrNoData)
	}
	return out, nil
}

// PadCIK left-pads a numeric CIK to the 10 digits EDGAR uses in file names.
func PadCIK(cik string) (string, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(cik), 10, 64)
	if err != nil || n == 0 || n > 9999999999 {
		return "", fmt.Errorf("invalid cik %q", cik)
	}
	return fmt.Sprintf("%010d", n), nil
}

// FilingIndexURL links to the human readable index page of one filing.
func FilingIndexURL(cik, accession string) string {
	return fmt.Sprintf("%s/%s/%s/%s-index.htm", secArchivesURL, strings.TrimLeft(cik, "0"), strings.ReplaceAll(accession, "-", ""), accession)
}
