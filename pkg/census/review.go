package census

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-census/pkg/model"
	"github.com/goliatone/go-census/pkg/render"
)

var spaceBeforeComma = regexp.MustCompile(`\s+,`)

// Review builds the summary shown on the last step. Blank lines and empty
// sections are left out.
func (f *Form) Review() render.Review {
	f.mu.Lock()
	defer f.mu.Unlock()

	text := func(name string) string { return f.state.Get(model.Household(name)).String() }
	join := func(parts ...string) string { return strings.TrimSpace(strings.Join(parts, " ")) }
	item := func(label, value string) render.Item { return render.Item{Label: label, Value: value} }

	var review render.Review

	spouse := ""
	if text("spouse_firstname") != "" {
		spouse = join(text(FieldSpousePrefix), text("spouse_firstname"), text("spouse_lastname"))
	}
	address := fmt.Sprintf("%s, %s, %s, %s %s",
		text("address_house"), text("address_street"), text("address_city"), text("address_state"), text("address_pincode"))
	address = strings.TrimSpace(spaceBeforeComma.ReplaceAllString(address, ","))
	if strings.Trim(address, ", ") == "" {
		address = ""
	}
	review.Add("Basic",
		item("Head of Family", join(text("head_prefix"), text("head_firstname"), text("head_lastname"))),
		item("Head DOB", text(FieldHeadDOB)),
		item("Birth Place", text("head_birthplace")),
		item("Blood Group", text("head_blood_group")),
		item("Mobile", text("head_mobile")),
		item("Marital Status", text(FieldMaritalStatus)),
		item("Spouse", spouse),
		item("Address", address),
		item("Email", text("email")),
	)

	var children []render.Item
	for n := 1; n <= f.builder.Count(model.GroupChild); n++ {
		child := func(name string) string { return f.state.Get(model.Child(n, name)).String() }
		label := fmt.Sprintf("Child %d", n)
		heading := ""
		if name, gender := join(child("firstname"), child("lastname")), child("gender"); name != "" || gender != "" {
			heading = fmt.Sprintf("%s (%s)", name, gender)
		}
		children = append(children,
			item(label, heading),
			item(label+" DOB", child(ChildDOB)),
			item(label+" Education", child("education")),
			item(label+" Working", child("working_status")),
			item(label+" Work details", child("work_details")),
			item(label+" Marital status", child("marital_status")),
			item(label+" Spouse", child("spouse_name")),
		)
	}
	review.Add("Children", children...)

	review.Add("Community",
		item("Rite", text("rite")),
		item("Other Rite", text("rite_other")),
		item("Caste Category", text("caste_category")),
		item("Ethnic Community", text("ethnic_community")),
		item("Home Diocese", text("home_diocese")),
		item("Home Parish", text("home_parish")),
		item("Dependents", text(FieldDependents)),
	)

	review.Add("Additional",
		item("Illness", text("illness")),
		item("Conditions", text("conditions")),
		item("Insurance", text("insurance")),
		item("Vehicle", text("vehicle")),
		item("Job Seeking", text(FieldJobSeeking)),
	)

	var seekers []render.Item
	for n := 1; n <= f.builder.Count(model.GroupJobSeeker); n++ {
		seeker := func(name string) string { return f.state.Get(model.JobSeeker(n, name)).String() }
		name, gender := seeker("name"), seeker("gender")
		if name == "" && gender == "" && seeker("age") == "" && seeker("qualification") == "" && seeker("experience") == "" {
			continue
		}
		label := fmt.Sprintf("Person %d", n)
		heading := name
		if gender != "" {
			heading = strings.TrimSpace(fmt.Sprintf("%s (%s)", name, gender))
		}
		seekers = append(seekers,
			item(label, heading),
			item(label+" Age", seeker("age")),
			item(label+" Qualification", seeker("qualification")),
			item(label+" Experience", seeker("experience")),
		)
	}
	review.Add("Job Seekers", seekers...)

	return review
}
