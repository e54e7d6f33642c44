// Package filing maps the tag tree of an EDGAR submission onto a typed,
// lossless filing model.
package filing

import (
	"time"

	"github.com/samber/lo"

	"github.com/dgallion1/ncparse/internal/datetime"
	"github.com/dgallion1/ncparse/internal/payload"
	"github.com/dgallion1/ncparse/internal/sgml"
)

// Filing is one parsed submission.
type Filing struct {
	Header    Header         `json:"header"`
	Documents []Document     `json:"documents"`
	Anomalies []sgml.Anomaly `json:"anomalies,omitempty"`
}

// Primary returns the first document, conventionally the primary one.
func (f *Filing) Primary() (Document, bool) {
	return lo.First(f.Documents)
}

// DocumentsOfType returns the documents declaring the given type.
func (f *Filing) DocumentsOfType(docType string) []Document {
	return lo.Filter(f.Documents, func(d Document, _ int) bool {
		return d.Type == docType
	})
}

// WithoutBodies returns a copy of f whose document payloads keep their
// metadata but drop the extracted body.
func (f *Filing) WithoutBodies() *Filing {
	out := *f
	out.Documents = make([]Document, len(f.Documents))
	for i, d := range f.Documents {
		d.Payload.Text = ""
		d.Payload.Data = nil
		out.Documents[i] = d
	}
	return &out
}

// Header is the submission metadata. Absent fields stay nil or empty.
type Header struct {
	AccessionNumber         string          `json:"accession_number,omitempty"`
	Type                    string          `json:"type,omitempty"`
	PublicDocumentCount     *int            `json:"public_document_count,omitempty"`
	Items                   []string        `json:"items,omitempty"`
	FilingDate              *datetime.Date  `json:"filing_date,omitempty"`
	Period                  *datetime.Date  `json:"period,omitempty"`
	DateOfFilingDateChange  *datetime.Date  `json:"date_of_filing_date_change,omitempty"`
	EffectivenessDate       *datetime.Date  `json:"effectiveness_date,omitempty"`
	ActionDate              *datetime.Date  `json:"action_date,omitempty"`
	ReceivedDate            *datetime.Date  `json:"received_date,omitempty"`
	PeriodStart             *datetime.Date  `json:"period_start,omitempty"`
	PublicRelDate           *datetime.Date  `json:"public_rel_date,omitempty"`
	AcceptanceDateTime      *time.Time      `json:"acceptance_datetime,omitempty"`
	GroupMembers            []string        `json:"group_members,omitempty"`
	PreviousAccessionNumber string          `json:"previous_accession_number,omitempty"`
	PublicReferenceAcc      string          `json:"public_reference_acc,omitempty"`
	Reference462B           string          `json:"reference_462b,omitempty"`
	References429           string          `json:"references_429,omitempty"`
	MAIIndividual           string          `json:"ma_i_individual,omitempty"`
	ABSRule                 string          `json:"abs_rule,omitempty"`
	ABSAssetClass           string          `json:"abs_asset_class,omitempty"`
	Category                string          `json:"category,omitempty"`
	SROs                    string          `json:"sros,omitempty"`
	DepositorCIK            string          `json:"depositor_cik,omitempty"`
	DepositorFileNumber     string          `json:"depositor_file_number,omitempty"`
	SponsorCIK              string          `json:"sponsor_cik,omitempty"`
	SecuritizerCIK          string          `json:"securitizer_cik,omitempty"`
	SecuritizerFileNumber   string          `json:"securitizer_file_number,omitempty"`
	IssuingEntityCIK        string          `json:"issuing_entity_cik,omitempty"`
	IssuingEntityName       string          `json:"issuing_entity_name,omitempty"`

	IsFilerANewRegistrant               *bool `json:"is_filer_a_new_registrant,omitempty"`
	IsFilerAWellKnownSeasonedIssuer     *bool `json:"is_filer_a_well_known_seasoned_issuer,omitempty"`
	FiledPursuantToGeneralInstructionA2 *bool `json:"filed_pursuant_to_general_instruction_a2,omitempty"`
	IsFund24F2Eligible                  *bool `json:"is_fund_24f2_eligible,omitempty"`
	NoQuarterlyActivity                 *bool `json:"no_quarterly_activity,omitempty"`
	NoAnnualActivity                    *bool `json:"no_annual_activity,omitempty"`
	RegisteredEntity                    *bool `json:"registered_entity,omitempty"`

	// Presence flags: the tag carries no value.
	Paper           bool `json:"paper,omitempty"`
	ConfirmingCopy  bool `json:"confirming_copy,omitempty"`
	PrivateToPublic bool `json:"private_to_public,omitempty"`
	Deletion        bool `json:"deletion,omitempty"`
	Correction      bool `json:"correction,omitempty"`

	// Companies holds every company block in source order.
	Companies        []Company         `json:"companies,omitempty"`
	SeriesAndClasses *SeriesAndClasses `json:"series_and_classes_contracts_data,omitempty"`

	Overflow map[string][]string `json:"overflow,omitempty"`
	Sections []Section           `json:"sections,omitempty"`
	// Extra holds stray content lines found directly in the envelope.
	Extra string `json:"extra,omitempty"`
}

// CompaniesByRole returns the companies of one role in source order.
func (h *Header) CompaniesByRole(role Role) []Company {
	return lo.Filter(h.Companies, func(c Company, _ int) bool {
		return c.Role == role
	})
}

// Role is the company block a Company was read from.
type Role string

const (
	RoleFiler          Role = "FILER"
	RoleReportingOwner Role = "REPORTING-OWNER"
	RoleIssuer         Role = "ISSUER"
	RoleSubjectCompany Role = "SUBJECT-COMPANY"
	RoleFiledBy        Role = "FILED-BY"
	RoleFiledFor       Role = "FILED-FOR"
	RoleDepositor      Role = "DEPOSITOR"
	RoleSecuritizer    Role = "SECURITIZER"
)

var roles = []Role{
	RoleFiler, RoleReportingOwner, RoleIssuer, RoleSubjectCompany,
	RoleFiledBy, RoleFiledFor, RoleDepositor, RoleSecuritizer,
}

// Company is one party to the submission.
type Company struct {
	Role            Role           `json:"role"`
	Data            *CompanyData   `json:"company_data,omitempty"`
	Owner           *CompanyData   `json:"owner_data,omitempty"`
	FilingValues    []FilingValues `json:"filing_values,omitempty"`
	BusinessAddress *Address       `json:"business_address,omitempty"`
	MailAddress     *Address       `json:"mail_address,omitempty"`
	FormerCompanies []FormerName   `json:"former_companies,omitempty"`
	FormerNames     []FormerName   `json:"former_names,omitempty"`

	// Overflow keys are tag paths relative to the company block,
	// e.g. "BUSINESS-ADDRESS/FAX".
	Overflow map[string][]string `json:"overflow,omitempty"`
	Sections []Section           `json:"sections,omitempty"`
}

// Name returns the conformed name from company or owner data.
func (c Company) Name() string {
	if c.Data != nil && c.Data.ConformedName != "" {
		return c.Data.ConformedName
	}
	if c.Owner != nil {
		return c.Owner.ConformedName
	}
	return ""
}

// CIK returns the central index key from company or owner data.
func (c Company) CIK() string {
	if c.Data != nil && c.Data.CIK != "" {
		return c.Data.CIK
	}
	if c.Owner != nil {
		return c.Owner.CIK
	}
	return ""
}

type CompanyData struct {
	ConformedName        string             `json:"conformed_name,omitempty"`
	CIK                  string             `json:"cik,omitempty"`
	IRSNumber            string             `json:"irs_number,omitempty"`
	StateOfIncorporation string             `json:"state_of_incorporation,omitempty"`
	FiscalYearEnd        *datetime.MonthDay `json:"fiscal_year_end,omitempty"`
	AssignedSIC          string             `json:"assigned_sic,omitempty"`
	Relationship         string             `json:"relationship,omitempty"`
}

type FilingValues struct {
	FormType   string `json:"form_type,omitempty"`
	Act        string `json:"act,omitempty"`
	FileNumber string `json:"file_number,omitempty"`
	FilmNumber string `json:"film_number,omitempty"`
}

type Address struct {
	Street1 string `json:"street1,omitempty"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type FormerName struct {
	FormerConformedName string         `json:"former_conformed_name,omitempty"`
	DateChanged         *datetime.Date `json:"date_changed,omitempty"`
}

// SeriesAndClasses is the investment company series and class data.
type SeriesAndClasses struct {
	Existing []Series  `json:"existing,omitempty"`
	Mergers  []Merger  `json:"mergers,omitempty"`
	New      *NewSeries `json:"new,omitempty"`

	Overflow map[string][]string `json:"overflow,omitempty"`
	Sections []Section           `json:"sections,omitempty"`
}

type Series struct {
	OwnerCIK       string          `json:"owner_cik,omitempty"`
	SeriesID       string          `json:"series_id,omitempty"`
	SeriesName     string          `json:"series_name,omitempty"`
	ClassContracts []ClassContract `json:"class_contracts,omitempty"`
}

type ClassContract struct {
	ID           string `json:"class_contract_id,omitempty"`
	Name         string `json:"class_contract_name,omitempty"`
	TickerSymbol string `json:"class_contract_ticker_symbol,omitempty"`
}

type Merger struct {
	Acquiring *MergerParty  `json:"acquiring_data,omitempty"`
	Targets   []MergerParty `json:"target_data,omitempty"`
}

type MergerParty struct {
	CIK    string   `json:"cik,omitempty"`
	Series []Series `json:"series,omitempty"`
}

type NewSeries struct {
	OwnerCIK   string   `json:"owner_cik,omitempty"`
	Series     []Series `json:"new_series,omitempty"`
	NewClasses []Series `json:"new_classes_contracts,omitempty"`
}

// Document is one embedded file.
type Document struct {
	Type        string          `json:"type,omitempty"`
	Sequence    *int            `json:"sequence,omitempty"`
	Filename    string          `json:"filename,omitempty"`
	Description string          `json:"description,omitempty"`
	Flawed      bool            `json:"flawed,omitempty"`
	Payload     payload.Payload `json:"payload"`
	// Offset is the byte offset of the DOCUMENT tag.
	Offset int `json:"offset"`

	Overflow map[string][]string `json:"overflow,omitempty"`
	Sections []Section           `json:"sections,omitempty"`
	Extra    string              `json:"extra,omitempty"`
}

// Section is an unrecognized block kept verbatim.
type Section struct {
	Tag      string    `json:"tag"`
	Value    string    `json:"value,omitempty"`
	Raw      string    `json:"raw,omitempty"`
	Children []Section `json:"children,omitempty"`
}

func sectionOf(n *sgml.Node) Section {
	s := Section{Tag: n.Tag, Value: n.Value, Raw: string(n.Raw)}
	for _, c := range n.Children {
		s.Children = append(s.Children, sectionOf(c))
	}
	return s
}
