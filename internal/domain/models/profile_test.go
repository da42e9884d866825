package models

import "testing"

func completeProfile() Profile {
	return Profile{
		BusinessName:  "Sharma Traders",
		BusinessType:  "Retail",
		ContactNumber: "9876543210",
		ContactName:   "Anil Sharma",
		Pincode:       "400001",
		City:          "Mumbai",
		State:         "Maharashtra",
		Pancard:       "ABCDE1234F",
		GST:           "27ABCDE1234F1Z5",
	}
}

func TestProfileIsComplete(t *testing.T) {
	if !completeProfile().IsComplete() {
		t.Fatal("profile with every required field should be complete")
	}

	optional := completeProfile()
	optional.Website, optional.AnnualTurnover, optional.Address = "", "", ""
	if !optional.IsComplete() {
		t.Error("optional fields must not affect completion")
	}
}

func TestProfileIsComplete_MissingField(t *testing.T) {
	fields := []struct {
		name  string
		clear func(*Profile, string)
	}{
		{"business name", func(p *Profile, v string) { p.BusinessName = v }},
		{"business type", func(p *Profile, v string) { p.BusinessType = v }},
		{"contact number", func(p *Profile, v string) { p.ContactNumber = v }},
		{"contact name", func(p *Profile, v string) { p.ContactName = v }},
		{"pincode", func(p *Profile, v string) { p.Pincode = v }},
		{"city", func(p *Profile, v string) { p.City = v }},
		{"state", func(p *Profile, v string) { p.State = v }},
		{"pancard", func(p *Profile, v string) { p.Pancard = v }},
		{"gst", func(p *Profile, v string) { p.GST = v }},
	}
	for _, f := range fields {
		for _, blank := range []struct{ label, v string }{
			{"empty", ""},
			{"spaces", "   "},
			{"tabs and newlines", "\t\n"},
		} {
			t.Run(f.name+" "+blank.label, func(t *testing.T) {
				p := completeProfile()
				f.clear(&p, blank.v)
				if p.IsComplete() {
					t.Errorf("profile with %s = %q should be incomplete", f.name, blank.v)
				}
			})
		}
	}
}
