// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worldcat queries the OCLC WorldCat union catalog: metadata API for
// bibliographic records and classification, discovery API for institution
// holdings. Both APIs authenticate with OAuth2 client credentials; tokens
// are cached per scope until shortly before expiry.
package worldcat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/library-tools/apierr"
	"github.com/pdiddy/library-tools/config"
	"github.com/pdiddy/library-tools/internal/httpx"
)

const service = "worldcat"

// maxLimit is the brief-bibs search cap; holdingsPageSize is the discovery
// API per-request maximum.
const (
	maxLimit         = 50
	holdingsPageSize = 50
)

// tokenExpiryBuffer is subtracted from a token's lifetime so a token is
// never presented moments before it expires upstream.
const tokenExpiryBuffer = 60 * time.Second

// OAuth scopes per API surface.
const (
	scopeMetadata  = "WorldCatMetadataAPI"
	scopeDiscovery = "wcapi:view_holdings wcapi:view_institution_holdings"
)

// Book is a single bibliographic record. HoldingsFetched reports whether
// HoldingInstitutions and TotalHoldings were populated by a holdings call.
type Book struct {
	OCLCNumber          string
	Title               string
	Creator             string
	Contributors        []string
	Date                string
	MachineReadableDate string
	Publisher           string
	PublicationPlace    string
	Edition             string
	Series              string
	Language            string
	Format              string
	SpecificFormat      string
	ISBNs               []string
	MergedOCLCNumbers   []string
	HoldingInstitutions []string
	TotalHoldings       int
	HoldingsFetched     bool
}

// Classification holds LC and Dewey call numbers for one record, most
// popular first.
type Classification struct {
	OCLCNumber string
	LC         string
	LCAll      []string
	Dewey      string
	DeweyAll   []string
}

// Subject is one subject heading from a full bibliographic record.
type Subject struct {
	Name       string
	Vocabulary string
}

// Contributor is a named contributor with a relator role.
type Contributor struct {
	Name string
	Role string
}

// FullBib is a complete bibliographic record.
type FullBib struct {
	OCLCNumber          string
	Title               string
	Creator             string
	Contributors        []Contributor
	ISBNs               []string
	Edition             string
	Series              string
	Language            string
	LC                  string
	Dewey               string
	Subjects            []Subject
	Genres              []string
	GeneralFormat       string
	SpecificFormat      string
	PhysicalDescription string
	Publisher           string
	PublicationPlace    string
	PublicationDate     string
}

// Institution is one holding library from the discovery API.
type Institution struct {
	Symbol  string
	Name    string
	Country string
	State   string
	Type    string
}

// HoldingsResult reports which institutions hold an item. TotalHoldings is
// always the unfiltered upstream count, even when CheckInstitutions
// narrowed Institutions.
type HoldingsResult struct {
	OCLCNumber    string
	Symbols       []string
	Institutions  []Institution
	TotalHoldings int
}

// HoldingsOptions bounds a holdings fetch. Limit caps how many institutions
// are collected (0 means all, which can run to thousands of records);
// CheckInstitutions restricts results to the named OCLC symbols.
type HoldingsOptions struct {
	Limit             int
	CheckInstitutions []string
}

// SearchRequest holds book-search parameters. Offset is 1-indexed per the
// upstream API; Limit is clamped to 1-50.
type SearchRequest struct {
	Query          string
	YearFrom       int
	YearTo         int
	Language       string
	Limit          int
	Offset         int
	FetchHoldings  bool
	HoldingsOption HoldingsOptions
}

// LookupRequest identifies a single book. Strategies are tried in order:
// ISBN, then DOI, then title (optionally narrowed by author and year).
type LookupRequest struct {
	ISBN           string
	DOI            string
	Title          string
	Author         string
	Year           int
	YearFrom       int
	YearTo         int
	FetchHoldings  bool
	HoldingsOption HoldingsOptions
}

type cachedToken struct {
	value   string
	expires time.Time
}

// Client queries WorldCat. Safe for concurrent use; the token cache is the
// only mutable state and is mutex-guarded.
type Client struct {
	cfg  config.WorldCatConfig
	http *http.Client
	ua   string

	mu     sync.Mutex
	tokens map[string]cachedToken
}

// NewClient validates cfg and returns a union-catalog client.
func NewClient(cfg config.WorldCatConfig, httpCfg config.HTTPConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		http:   httpx.NewClient(httpCfg),
		ua:     httpCfg.UserAgent,
		tokens: make(map[string]cachedToken),
	}, nil
}

// token returns a valid access token for the scope, fetching one only when
// the cached token is absent or inside the expiry buffer.
func (c *Client) token(ctx context.Context, scope string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.tokens[scope]; ok && time.Now().Before(cached.expires) {
		return cached.value, nil
	}

	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {scope},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apierr.Wrap(apierr.KindValidation, service, "creating token request", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)

	resp, err := httpx.Do(c.http, service, req)
	if err != nil {
		return "", err
	}
	var tr tokenResponse
	if err := httpx.DecodeJSON(resp, service, &tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", apierr.New(apierr.KindAuthentication, service, "token response carried no access token")
	}

	expiresIn := tr.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	c.tokens[scope] = cachedToken{
		value:   tr.AccessToken,
		expires: time.Now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryBuffer),
	}
	return tr.AccessToken, nil
}

// getJSON issues an authenticated GET against one of the WorldCat APIs.
func (c *Client) getJSON(ctx context.Context, scope, rawURL string, params url.Values, v any) error {
	tok, err := c.token(ctx, scope)
	if err != nil {
		return err
	}
	header := http.Header{"Authorization": {"Bearer " + tok}}
	return httpx.GetJSON(ctx, c.http, service, c.ua, rawURL, params, header, v)
}

// SearchBooks searches the union catalog by keyword or subject. Each brief
// record is enriched with a summary-holdings call to pick up its ISBNs.
func (c *Client) SearchBooks(ctx context.Context, req SearchRequest) ([]Book, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, apierr.Validation(service, "query must not be empty")
	}
	if err := validateHoldingsOptions(req.HoldingsOption); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := req.Offset
	if offset < 1 {
		offset = 1
	}

	params := url.Values{
		"q":        {req.Query},
		"itemType": {"book"},
		"limit":    {fmt.Sprintf("%d", limit)},
		"offset":   {fmt.Sprintf("%d", offset)},
	}
	if published := dateRange(req.YearFrom, req.YearTo); published != "" {
		params.Set("datePublished", published)
	}
	if req.Language != "" {
		params.Set("inLanguage", req.Language)
	}

	var resp briefBibsResponse
	if err := c.getJSON(ctx, scopeMetadata, c.cfg.MetadataBaseURL+"/search/brief-bibs", params, &resp); err != nil {
		return nil, err
	}

	records := resp.BriefRecords
	if len(records) > limit {
		records = records[:limit]
	}

	var books []Book
	for _, brief := range records {
		// A record whose enrichment call fails is skipped; only the initial
		// search is fatal.
		book, err := c.enrichByOCLC(ctx, brief.OCLCNumber)
		if err != nil || book == nil {
			continue
		}
		if req.FetchHoldings {
			if err := c.populateHoldings(ctx, book, req.HoldingsOption); err != nil {
				return nil, err
			}
		}
		books = append(books, *book)
	}
	return books, nil
}

// LookupBook identifies a single book, trying ISBN, then DOI, then
// title/author/year. It returns (nil, nil) when no strategy matches.
func (c *Client) LookupBook(ctx context.Context, req LookupRequest) (*Book, error) {
	if req.ISBN == "" && req.DOI == "" && req.Title == "" {
		return nil, apierr.Validation(service, "provide an ISBN, DOI, or title to look up")
	}
	if err := validateHoldingsOptions(req.HoldingsOption); err != nil {
		return nil, err
	}

	if req.ISBN != "" {
		isbn := strings.NewReplacer("-", "", " ", "").Replace(req.ISBN)
		book, err := c.summaryHoldings(ctx, url.Values{"isbn": {isbn}})
		if err != nil || book != nil {
			return c.finishLookup(ctx, book, req, err)
		}
	}

	if req.DOI != "" {
		doi := strings.TrimPrefix(strings.TrimPrefix(req.DOI, "https://doi.org/"), "http://doi.org/")
		// The bn: index treats "/" as a query delimiter, so it is escaped.
		query := "bn:" + strings.ReplaceAll(doi, "/", `\/`)
		book, err := c.briefSearchThenEnrich(ctx, url.Values{"q": {query}})
		if err != nil || book != nil {
			return c.finishLookup(ctx, book, req, err)
		}
	}

	if req.Title != "" {
		parts := []string{fmt.Sprintf("ti:%q", strings.ReplaceAll(req.Title, `"`, ""))}
		if req.Author != "" {
			parts = append(parts, fmt.Sprintf("au:%q", strings.ReplaceAll(req.Author, `"`, "")))
		}
		params := url.Values{"itemType": {"book"}}
		if req.Year > 0 {
			parts = append(parts, fmt.Sprintf("yr:%d", req.Year))
		} else if published := dateRange(req.YearFrom, req.YearTo); published != "" {
			params.Set("datePublished", published)
		}
		params.Set("q", strings.Join(parts, " AND "))

		book, err := c.briefSearchThenEnrich(ctx, params)
		if err != nil || book != nil {
			return c.finishLookup(ctx, book, req, err)
		}
	}

	return nil, nil
}

func (c *Client) finishLookup(ctx context.Context, book *Book, req LookupRequest, err error) (*Book, error) {
	if err != nil || book == nil {
		return nil, err
	}
	if req.FetchHoldings {
		if err := c.populateHoldings(ctx, book, req.HoldingsOption); err != nil {
			return nil, err
		}
	}
	return book, nil
}

// briefSearchThenEnrich runs a brief-bibs search and enriches the first hit
// through the summary-holdings endpoint.
func (c *Client) briefSearchThenEnrich(ctx context.Context, params url.Values) (*Book, error) {
	var resp briefBibsResponse
	if err := c.getJSON(ctx, scopeMetadata, c.cfg.MetadataBaseURL+"/search/brief-bibs", params, &resp); err != nil {
		return nil, err
	}
	if resp.NumberOfRecords == 0 || len(resp.BriefRecords) == 0 {
		return nil, nil
	}
	return c.enrichByOCLC(ctx, resp.BriefRecords[0].OCLCNumber)
}

// enrichByOCLC fetches the summary-holdings record for one OCLC number,
// which carries the ISBN list the brief record lacks.
func (c *Client) enrichByOCLC(ctx context.Context, oclcNumber string) (*Book, error) {
	return c.summaryHoldings(ctx, url.Values{"oclcNumber": {oclcNumber}})
}

func (c *Client) summaryHoldings(ctx context.Context, params url.Values) (*Book, error) {
	var resp briefBibsResponse
	if err := c.getJSON(ctx, scopeMetadata, c.cfg.MetadataBaseURL+"/search/bibs-summary-holdings", params, &resp); err != nil {
		return nil, err
	}
	if resp.NumberOfRecords == 0 || len(resp.BriefRecords) == 0 {
		return nil, nil
	}
	book := parseBook(resp.BriefRecords[0])
	return &book, nil
}

// Classification returns LC and Dewey call numbers for an OCLC number.
func (c *Client) Classification(ctx context.Context, oclcNumber string) (*Classification, error) {
	if strings.TrimSpace(oclcNumber) == "" {
		return nil, apierr.Validation(service, "OCLC number must not be empty")
	}

	var resp classificationResponse
	u := c.cfg.MetadataBaseURL + "/search/classification-bibs/" + url.PathEscape(oclcNumber)
	if err := c.getJSON(ctx, scopeMetadata, u, nil, &resp); err != nil {
		return nil, err
	}

	cl := &Classification{
		OCLCNumber: oclcNumber,
		LCAll:      resp.LC.MostPopular,
		DeweyAll:   resp.Dewey.MostPopular,
	}
	if len(cl.LCAll) > 0 {
		cl.LC = cl.LCAll[0]
	}
	if len(cl.DeweyAll) > 0 {
		cl.Dewey = cl.DeweyAll[0]
	}
	return cl, nil
}

// FullBib returns the complete bibliographic record for an OCLC number.
func (c *Client) FullBib(ctx context.Context, oclcNumber string) (*FullBib, error) {
	if strings.TrimSpace(oclcNumber) == "" {
		return nil, apierr.Validation(service, "OCLC number must not be empty")
	}

	var resp fullBibResponse
	u := c.cfg.MetadataBaseURL + "/search/bibs/" + url.PathEscape(oclcNumber)
	if err := c.getJSON(ctx, scopeMetadata, u, nil, &resp); err != nil {
		return nil, err
	}
	return parseFullBib(oclcNumber, resp), nil
}

// Holdings lists institutions holding an item, paging the discovery API in
// batches of 50 until the upstream count, the last partial page, or
// opts.Limit is reached.
func (c *Client) Holdings(ctx context.Context, oclcNumber string, opts HoldingsOptions) (*HoldingsResult, error) {
	if strings.TrimSpace(oclcNumber) == "" {
		return nil, apierr.Validation(service, "OCLC number must not be empty")
	}
	if err := validateHoldingsOptions(opts); err != nil {
		return nil, err
	}

	result := &HoldingsResult{OCLCNumber: oclcNumber}
	offset := 1

	for {
		// The institution filter is applied client-side only; sending
		// heldBySymbol upstream would make totalHoldingCount depend on the
		// filter.
		params := url.Values{
			"oclcNumber": {oclcNumber},
			"limit":      {fmt.Sprintf("%d", holdingsPageSize)},
		}
		if offset > 1 {
			params.Set("offset", fmt.Sprintf("%d", offset))
		}

		var resp holdingsResponse
		if err := c.getJSON(ctx, scopeDiscovery, c.cfg.DiscoveryBaseURL+"/bibs-holdings", params, &resp); err != nil {
			return nil, err
		}

		pageCount := 0
		for _, record := range resp.BriefRecords {
			result.TotalHoldings = record.InstitutionHolding.TotalHoldingCount
			for _, h := range record.InstitutionHolding.BriefHoldings {
				pageCount++
				if !matchesSymbols(h.OCLCSymbol, opts.CheckInstitutions) {
					continue
				}
				result.Institutions = append(result.Institutions, Institution{
					Symbol:  h.OCLCSymbol,
					Name:    h.InstitutionName,
					Country: h.Country,
					State:   h.State,
					Type:    h.InstitutionType,
				})
				if h.OCLCSymbol != "" {
					result.Symbols = append(result.Symbols, h.OCLCSymbol)
				}
			}
		}

		collected := offset - 1 + pageCount
		if collected >= result.TotalHoldings || pageCount < holdingsPageSize {
			break
		}
		if opts.Limit > 0 && len(result.Institutions) >= opts.Limit {
			break
		}
		offset += holdingsPageSize
	}

	if opts.Limit > 0 && len(result.Institutions) > opts.Limit {
		result.Institutions = result.Institutions[:opts.Limit]
	}
	if opts.Limit > 0 && len(result.Symbols) > opts.Limit {
		result.Symbols = result.Symbols[:opts.Limit]
	}
	return result, nil
}

func (c *Client) populateHoldings(ctx context.Context, book *Book, opts HoldingsOptions) error {
	holdings, err := c.Holdings(ctx, book.OCLCNumber, opts)
	if err != nil {
		return err
	}
	book.HoldingInstitutions = holdings.Symbols
	book.TotalHoldings = holdings.TotalHoldings
	book.HoldingsFetched = true
	return nil
}

// validateHoldingsOptions rejects a non-nil but empty institution filter,
// which is always a caller mistake (it would silently filter out everything
// upstream returns).
func validateHoldingsOptions(opts HoldingsOptions) error {
	if opts.CheckInstitutions != nil && len(opts.CheckInstitutions) == 0 {
		return apierr.Validation(service, "check_institutions must not be empty when set")
	}
	return nil
}

// matchesSymbols reports whether symbol passes the institution filter.
// Symbols compare case-insensitively.
func matchesSymbols(symbol string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if strings.EqualFold(symbol, f) {
			return true
		}
	}
	return false
}

// dateRange renders the datePublished parameter: "from-to", "from-", or
// "-to".
func dateRange(from, to int) string {
	switch {
	case from > 0 && to > 0:
		return fmt.Sprintf("%d-%d", from, to)
	case from > 0:
		return fmt.Sprintf("%d-", from)
	case to > 0:
		return fmt.Sprintf("-%d", to)
	}
	return ""
}

func parseBook(r briefRecord) Book {
	title := r.Title
	if title == "" {
		title = "Untitled"
	}
	return Book{
		OCLCNumber:          r.OCLCNumber,
		Title:               title,
		Creator:             r.Creator,
		Contributors:        r.Contributors,
		Date:                r.Date,
		MachineReadableDate: r.MachineReadableDate,
		Publisher:           r.Publisher,
		PublicationPlace:    r.PublicationPlace,
		Edition:             r.Edition,
		Series:              r.Series,
		Language:            r.Language,
		Format:              r.GeneralFormat,
		SpecificFormat:      r.SpecificFormat,
		ISBNs:               r.ISBNs,
		MergedOCLCNumbers:   r.MergedOCLCNumbers,
	}
}

func parseFullBib(oclcNumber string, r fullBibResponse) *FullBib {
	bib := &FullBib{
		OCLCNumber:          oclcNumber,
		Creator:             "",
		Language:            r.Language.ItemLanguage,
		LC:                  r.Classification.LC,
		Dewey:               r.Classification.Dewey,
		Genres:              r.Description.Genres,
		GeneralFormat:       r.Format.GeneralFormat,
		SpecificFormat:      r.Format.SpecificFormat,
		PhysicalDescription: r.Description.PhysicalDescription,
		PublicationDate:     r.Date.PublicationDate,
	}

	if len(r.Title.MainTitles) > 0 {
		bib.Title = r.Title.MainTitles[0].Text
	}
	if len(r.Publishers) > 0 {
		bib.Publisher = r.Publishers[0].PublisherName.Text
		bib.PublicationPlace = r.Publishers[0].PublicationPlace
	}

	for i, creator := range r.Contributor.Creators {
		name := creator.Name.Text
		if name == "" {
			continue
		}
		if i == 0 {
			bib.Creator = name
		}
		role := creator.RelatorTerm.Text
		if role == "" {
			role = "Creator"
		}
		bib.Contributors = append(bib.Contributors, Contributor{Name: name, Role: role})
	}

	for _, subj := range r.Subjects {
		if subj.SubjectName.Text == "" {
			continue
		}
		bib.Subjects = append(bib.Subjects, Subject{
			Name:       subj.SubjectName.Text,
			Vocabulary: subj.Vocabulary,
		})
	}

	for _, entry := range r.Identifier.ISBNs {
		if entry.ISBN != "" {
			bib.ISBNs = append(bib.ISBNs, entry.ISBN)
		}
	}

	bib.Edition = r.Edition.EditionStatement
	if len(r.Series) > 0 && r.Series[0].SeriesName.Text != "" {
		bib.Series = r.Series[0].SeriesName.Text
		if r.Series[0].SeriesVolume != "" {
			bib.Series += ", " + r.Series[0].SeriesVolume
		}
	}
	return bib
}

// WorldCat API JSON structures.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type briefBibsResponse struct {
	NumberOfRecords int           `json:"numberOfRecords"`
	BriefRecords    []briefRecord `json:"briefRecords"`
}

type briefRecord struct {
	OCLCNumber          string   `json:"oclcNumber"`
	Title               string   `json:"title"`
	Creator             string   `json:"creator"`
	Contributors        []string `json:"contributors"`
	Date                string   `json:"date"`
	MachineReadableDate string   `json:"machineReadableDate"`
	Publisher           string   `json:"publisher"`
	PublicationPlace    string   `json:"publicationPlace"`
	Edition             string   `json:"edition"`
	Series              string   `json:"series"`
	Language            string   `json:"language"`
	GeneralFormat       string   `json:"generalFormat"`
	SpecificFormat      string   `json:"specificFormat"`
	ISBNs               []string `json:"isbns"`
	MergedOCLCNumbers   []string `json:"mergedOclcNumbers"`
}

type classificationResponse struct {
	LC struct {
		MostPopular []string `json:"mostPopular"`
	} `json:"lc"`
	Dewey struct {
		MostPopular []string `json:"mostPopular"`
	} `json:"dewey"`
}

type fullBibResponse struct {
	Title struct {
		MainTitles []struct {
			Text string `json:"text"`
		} `json:"mainTitles"`
	} `json:"title"`
	Contributor struct {
		Creators []struct {
			Name struct {
				Text string `json:"text"`
			} `json:"name"`
			RelatorTerm struct {
				Text string `json:"text"`
			} `json:"relatorTerm"`
		} `json:"creators"`
	} `json:"contributor"`
	Subjects []struct {
		SubjectName struct {
			Text string `json:"text"`
		} `json:"subjectName"`
		Vocabulary string `json:"vocabulary"`
	} `json:"subjects"`
	Classification struct {
		LC    string `json:"lc"`
		Dewey string `json:"dewey"`
	} `json:"classification"`
	Language struct {
		ItemLanguage string `json:"itemLanguage"`
	} `json:"language"`
	Format struct {
		GeneralFormat  string `json:"generalFormat"`
		SpecificFormat string `json:"specificFormat"`
	} `json:"format"`
	Description struct {
		Genres              []string `json:"genres"`
		PhysicalDescription string   `json:"physicalDescription"`
	} `json:"description"`
	Publishers []struct {
		PublisherName struct {
			Text string `json:"text"`
		} `json:"publisherName"`
		PublicationPlace string `json:"publicationPlace"`
	} `json:"publishers"`
	Date struct {
		PublicationDate     string `json:"publicationDate"`
		MachineReadableDate string `json:"machineReadableDate"`
	} `json:"date"`
	Identifier struct {
		ISBNs []struct {
			ISBN string `json:"isbn"`
		} `json:"isbns"`
	} `json:"identifier"`
	Edition struct {
		EditionStatement string `json:"editionStatement"`
	} `json:"edition"`
	Series []struct {
		SeriesName struct {
			Text string `json:"text"`
		} `json:"seriesName"`
		SeriesVolume string `json:"seriesVolume"`
	} `json:"series"`
}

type holdingsResponse struct {
	NumberOfRecords int `json:"numberOfRecords"`
	BriefRecords    []struct {
		InstitutionHolding struct {
			TotalHoldingCount int `json:"totalHoldingCount"`
			BriefHoldings     []struct {
				OCLCSymbol      string `json:"oclcSymbol"`
				InstitutionName string `json:"institutionName"`
				Country         string `json:"country"`
				State           string `json:"state"`
				InstitutionType string `json:"institutionType"`
			} `json:"briefHoldings"`
		} `json:"institutionHolding"`
	} `json:"briefRecords"`
}
