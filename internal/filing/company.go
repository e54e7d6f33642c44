package filing

import (
	"github.com/dgallion1/ncparse/internal/sgml"
)

func (m *mapper) company(role Role, n *sgml.Node) Company {
	c := Company{Role: role}
	f := m.fieldsFor(&c.Overflow, &c.Sections)
	for _, child := range n.Children {
		sub := f.within(child.Tag)
		switch child.Tag {
		case "COMPANY-DATA":
			if c.Data != nil {
				f.duplicate(child)
				continue
			}
			c.Data = sub.companyData(child)
		case "OWNER-DATA":
			if c.Owner != nil {
				f.duplicate(child)
				continue
			}
			c.Owner = sub.companyData(child)
		case "FILING-VALUES":
			c.FilingValues = append(c.FilingValues, sub.filingValues(child))
		case "BUSINESS-ADDRESS":
			if c.BusinessAddress != nil {
				f.duplicate(child)
				continue
			}
			c.BusinessAddress = sub.address(child)
		case "MAIL-ADDRESS":
			if c.MailAddress != nil {
				f.duplicate(child)
				continue
			}
			c.MailAddress = sub.address(child)
		case "FORMER-COMPANY":
			c.FormerCompanies = append(c.FormerCompanies, sub.formerName(child))
		case "FORMER-NAME":
			c.FormerNames = append(c.FormerNames, sub.formerName(child))
		default:
			f.unknown(child)
		}
	}
	return c
}

func (f fields) companyData(n *sgml.Node) *CompanyData {
	d := &CompanyData{}
	for _, c := range n.Children {
		switch c.Tag {
		case "CONFORMED-NAME":
			f.str(&d.ConformedName, c)
		case "CIK":
			f.str(&d.CIK, c)
		case "IRS-NUMBER":
			f.str(&d.IRSNumber, c)
		case "STATE-OF-INCORPORATION":
			f.str(&d.StateOfIncorporation, c)
		case "FISCAL-YEAR-END":
			f.monthDay(&d.FiscalYearEnd, c)
		case "ASSIGNED-SIC":
			f.str(&d.AssignedSIC, c)
		case "RELATIONSHIP":
			f.str(&d.Relationship, c)
		default:
			f.unknown(c)
		}
	}
	return d
}

func (f fields) filingValues(n *sgml.Node) FilingValues {
	var v FilingValues
	for _, c := range n.Children {
		switch c.Tag {
		case "FORM-TYPE":
			f.str(&v.FormType, c)
		case "ACT":
			f.str(&v.Act, c)
		case "FILE-NUMBER":
			f.str(&v.FileNumber, c)
		case "FILM-NUMBER":
			f.str(&v.FilmNumber, c)
		default:
			f.unknown(c)
		}
	}
	return v
}

func (f fields) address(n *sgml.Node) *Address {
	a := &Address{}
	for _, c := range n.Children {
		switch c.Tag {
		case "STREET1":
			f.str(&a.Street1, c)
		case "STREET2":
			f.str(&a.Street2, c)
		case "CITY":
			f.str(&a.City, c)
		case "STATE":
			f.str(&a.State, c)
		case "ZIP":
			f.str(&a.Zip, c)
		case "PHONE":
			f.str(&a.Phone, c)
		default:
			f.unknown(c)
		}
	}
	return a
}

func (f fields) formerName(n *sgml.Node) FormerName {
	var fn FormerName
	for _, c := range n.Children {
		switch c.Tag {
		case "FORMER-CONFORMED-NAME":
			f.str(&fn.FormerConformedName, c)
		case "DATE-CHANGED":
			f.date(&fn.DateChanged, c)
		default:
			f.unknown(c)
		}
	}
	return fn
}
