package filing

import (
	"github.com/dgallion1/ncparse/internal/sgml"
)

func (m *mapper) header(h *Header, nodes []*sgml.Node) {
	f := m.fieldsFor(&h.Overflow, &h.Sections)
	for _, n := range nodes {
		switch n.Tag {
		case "ACCESSION-NUMBER":
			f.str(&h.AccessionNumber, n)
		case "TYPE":
			f.str(&h.Type, n)
		case "PUBLIC-DOCUMENT-COUNT":
			f.integer(&h.PublicDocumentCount, n)
		case "ITEMS":
			f.list(&h.Items, n)
		case "FILING-DATE":
			f.requiredDate(&h.FilingDate, n)
		case "PERIOD":
			f.date(&h.Period, n)
		case "DATE-OF-FILING-DATE-CHANGE":
			f.date(&h.DateOfFilingDateChange, n)
		case "EFFECTIVENESS-DATE":
			f.date(&h.EffectivenessDate, n)
		case "ACTION-DATE":
			f.date(&h.ActionDate, n)
		case "RECEIVED-DATE":
			f.date(&h.ReceivedDate, n)
		case "PERIOD-START":
			f.date(&h.PeriodStart, n)
		case "PUBLIC-REL-DATE":
			f.date(&h.PublicRelDate, n)
		case "ACCEPTANCE-DATETIME", "TIMESTAMP":
			f.dateTime(&h.AcceptanceDateTime, n)
		case "GROUP-MEMBERS":
			f.list(&h.GroupMembers, n)
		case "PREVIOUS-ACCESSION-NUMBER":
			f.str(&h.PreviousAccessionNumber, n)
		case "PUBLIC-REFERENCE-ACC":
			f.str(&h.PublicReferenceAcc, n)
		case "REFERENCE-462B":
			f.str(&h.Reference462B, n)
		case "REFERENCES-429":
			f.str(&h.References429, n)
		case "MA-I_INDIVIDUAL", "MA-I-INDIVIDUAL":
			f.str(&h.MAIIndividual, n)
		case "ABS-RULE":
			f.str(&h.ABSRule, n)
		case "ABS-ASSET-CLASS":
			f.str(&h.ABSAssetClass, n)
		case "CATEGORY":
			f.str(&h.Category, n)
		case "SROS":
			f.str(&h.SROs, n)
		case "DEPOSITOR-CIK":
			f.str(&h.DepositorCIK, n)
		case "DEPOSITOR-FILE-NUMBER":
			f.str(&h.DepositorFileNumber, n)
		case "SPONSOR-CIK":
			f.str(&h.SponsorCIK, n)
		case "SECURITIZER-CIK":
			f.str(&h.SecuritizerCIK, n)
		case "SECURITIZER-FILE-NUMBER":
			f.str(&h.SecuritizerFileNumber, n)
		case "ISSUING-ENTITY-CIK":
			f.str(&h.IssuingEntityCIK, n)
		case "ISSUING-ENTITY-NAME":
			f.str(&h.IssuingEntityName, n)
		case "IS-FILER-A-NEW-REGISTRANT":
			f.flag(&h.IsFilerANewRegistrant, n)
		case "IS-FILER-A-WELL-KNOWN-SEASONED-ISSUER":
			f.flag(&h.IsFilerAWellKnownSeasonedIssuer, n)
		case "FILED-PURSUANT-TO-GENERAL-INSTRUCTION-A2":
			f.flag(&h.FiledPursuantToGeneralInstructionA2, n)
		case "IS-FUND-24F2-ELIGIBLE":
			f.flag(&h.IsFund24F2Eligible, n)
		case "NO-QUARTERLY-ACTIVITY":
			f.flag(&h.NoQuarterlyActivity, n)
		case "NO-ANNUAL-ACTIVITY":
			f.flag(&h.NoAnnualActivity, n)
		case "REGISTERED-ENTITY":
			f.flag(&h.RegisteredEntity, n)
		case "PAPER":
			f.presence(&h.Paper, n)
		case "CONFIRMING-COPY":
			f.presence(&h.ConfirmingCopy, n)
		case "PRIVATE-TO-PUBLIC":
			f.presence(&h.PrivateToPublic, n)
		case "DELETION":
			f.presence(&h.Deletion, n)
		case "CORRECTION":
			f.presence(&h.Correction, n)
		case "SERIES-AND-CLASSES-CONTRACTS-DATA":
			if h.SeriesAndClasses != nil {
				f.duplicate(n)
				continue
			}
			h.SeriesAndClasses = m.seriesAndClasses(n)
		default:
			if role, ok := roleOf(n.Tag); ok {
				h.Companies = append(h.Companies, m.company(role, n))
				continue
			}
			f.unknown(n)
		}
	}
}

func roleOf(tag string) (Role, bool) {
	for _, r := range roles {
		if string(r) == tag {
			return r, true
		}
	}
	return "", false
}
