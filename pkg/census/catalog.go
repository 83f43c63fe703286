package census

import (
	"strconv"

	"github.com/goliatone/go-census/pkg/config"
	"github.com/goliatone/go-census/pkg/model"
	"github.com/goliatone/go-census/pkg/rules"
	"github.com/goliatone/go-census/pkg/sections"
)

// Field names the session reacts to structurally.
const (
	FieldNumChildren   = "num_children"
	FieldDependents    = "dependents"
	FieldJobSeeking    = "job_seeking"
	FieldMaritalStatus = "marital_status"
	FieldHeadDOB       = "head_dob"
	FieldSpouseDOB     = "spouse_dob"
	FieldSpousePrefix  = "spouse_prefix"

	ChildDOB        = "dob"
	ChildAgeWarning = "age_warning"
)

// Option values referenced by rules.
const (
	StatusMarried        = "Married"
	StatusSpouseDeceased = "Spouse Deceased"
	DeceasedPrefix       = "Late."
	WorkingYes           = "Yes"
	JobSeekingFamily     = "Yes - Family"
	JobSeekingRelative   = "Yes - Relative"
)

// AgeWarningMessage is shown next to a child flagged by the age anomaly rule.
const AgeWarningMessage = "Child age appears to be equal to or greater than a parent's age. Please verify the date of birth."

// StepNames titles the steps of the form.
var StepNames = map[int]string{
	1: "Basic Information",
	2: "Children Information",
	3: "Community & Dependents",
	4: "Additional Information",
	5: "Review & Submit",
}

var (
	prefixOptions      = []string{"Mr.", "Mrs.", "Ms.", "Dr."}
	bloodGroupOptions  = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-", "Other"}
	maritalOptions     = []string{"Single", StatusMarried, "Divorced", "Separated", StatusSpouseDeceased}
	riteOptions        = []string{"Latin", "Syro-Malabar", "Syro-Malankara", "Other"}
	casteOptions       = []string{"General", "OBC", "SC", "ST"}
	dependentOptions   = []string{"Father", "Mother", "Father-in-law", "Mother-in-law", "Grandparent", "Other"}
	illnessOptions     = []string{"None", "Diabetes", "Blood Pressure", "Heart Disease", "Asthma", "Other"}
	conditionOptions   = []string{"None", "Physically Challenged", "Visually Impaired", "Hearing Impaired", "Bedridden", "Other"}
	insuranceOptions   = []string{"None", "Health", "Life", "Vehicle", "Other"}
	vehicleOptions     = []string{"None", "Bicycle", "Two Wheeler", "Four Wheeler", "Other"}
	jobSeekingOptions  = []string{"No", JobSeekingFamily, JobSeekingRelative}
	genderOptions      = []string{"Male", "Female"}
	educationOptions   = []string{"Not started", "In school", "Higher Secondary", "Undergraduate", "Graduate", "PG/Masters", "PHD", "Other"}
	workingOptions     = []string{WorkingYes, "No", "Seeking"}
	childMaritalStatus = []string{"Single", StatusMarried}
)

// Catalog declares the fields, block templates and rules of the form.
type Catalog struct {
	Household []model.Field
	Templates []sections.Template
	Rules     []rules.Rule
}

func household(name string, kind model.Kind, step int, label string, required bool) model.Field {
	return model.Field{ID: model.Household(name), Kind: kind, Step: step, Label: label, Required: required}
}

func hidden(f model.Field) model.Field {
	f.Hidden = true
	return f
}

func maxLen(f model.Field, n int) model.Field {
	f.MaxLength = n
	return f
}

func options(f model.Field, opts []string) model.Field {
	f.Options = append([]string(nil), opts...)
	return f
}

func blockField(name string, kind model.Kind, step int, label string, required bool) model.Field {
	return model.Field{ID: model.Identity{Name: name}, Kind: kind, Step: step, Label: label, Required: required}
}

// DefaultCatalog builds the household census form for cfg.
func DefaultCatalog(cfg config.Config) Catalog {
	childCounts := make([]string, 0, cfg.MaxChildren+1)
	for n := 0; n <= cfg.MaxChildren; n++ {
		childCounts = append(childCounts, strconv.Itoa(n))
	}

	fields := []model.Field{
		options(household("head_prefix", model.KindSingle, 1, "Head Prefix", true), prefixOptions),
		maxLen(household("head_firstname", model.KindTextOnly, 1, "Head First Name", true), 40),
		maxLen(household("head_lastname", model.KindTextOnly, 1, "Head Last Name", true), 40),
		household(FieldHeadDOB, model.KindDate, 1, "Head Date of Birth", true),
		maxLen(household("head_birthplace", model.KindTextOnly, 1, "Birth Place", false), 60),
		options(household("head_blood_group", model.KindSingle, 1, "Blood Group", false), bloodGroupOptions),
		hidden(maxLen(household("head_blood_group_other", model.KindText, 1, "Other Blood Group", true), 20)),
		household("head_mobile", model.KindPhone, 1, "Mobile Number", true),
		options(household(FieldMaritalStatus, model.KindSingle, 1, "Marital Status", true), maritalOptions),
		hidden(options(household(FieldSpousePrefix, model.KindSingle, 1, "Spouse Prefix", false), append(append([]string(nil), prefixOptions...), DeceasedPrefix))),
		hidden(maxLen(household("spouse_firstname", model.KindTextOnly, 1, "Spouse First Name", true), 40)),
		hidden(maxLen(household("spouse_lastname", model.KindTextOnly, 1, "Spouse Last Name", true), 40)),
		hidden(household(FieldSpouseDOB, model.KindDate, 1, "Spouse Date of Birth", true)),
		hidden(options(household("spouse_blood_group", model.KindSingle, 1, "Spouse Blood Group", false), bloodGroupOptions)),
		hidden(maxLen(household("spouse_blood_group_other", model.KindText, 1, "Spouse Other Blood Group", true), 20)),
		hidden(household("spouse_mobile", model.KindPhone, 1, "Spouse Mobile Number", false)),
		maxLen(household("address_house", model.KindText, 1, "House Number", true), 60),
		maxLen(household("address_street", model.KindText, 1, "Street", false), 100),
		maxLen(household("address_city", model.KindTextOnly, 1, "City", true), 40),
		maxLen(household("address_state", model.KindTextOnly, 1, "State", true), 40),
		household("address_pincode", model.KindPostal, 1, "PIN Code", true),
		household("email", model.KindEmail, 1, "Email", false),

		options(household(FieldNumChildren, model.KindSingle, 2, "Number of Children", true), childCounts),

		options(household("rite", model.KindSingle, 3, "Rite", true), riteOptions),
		hidden(maxLen(household("rite_other", model.KindTextOnly, 3, "Other Rite", true), 40)),
		options(household("caste_category", model.KindSingle, 3, "Caste Category", false), casteOptions),
		maxLen(household("ethnic_community", model.KindText, 3, "Ethnic Community", false), 60),
		maxLen(household("home_diocese", model.KindText, 3, "Home Diocese", false), 60),
		maxLen(household("home_parish", model.KindText, 3, "Home Parish", false), 60),
		options(household(FieldDependents, model.KindMulti, 3, "Dependents", false), dependentOptions),

		options(household("illness", model.KindMulti, 4, "Illness", false), illnessOptions),
		hidden(maxLen(household("illness_other", model.KindText, 4, "Other Illness", true), 100)),
		options(household("conditions", model.KindMulti, 4, "Conditions", false), conditionOptions),
		hidden(maxLen(household("conditions_other", model.KindText, 4, "Other Condition", true), 100)),
		options(household("insurance", model.KindMulti, 4, "Insurance", false), insuranceOptions),
		hidden(maxLen(household("insurance_other", model.KindText, 4, "Other Insurance", true), 100)),
		options(household("vehicle", model.KindMulti, 4, "Vehicle", false), vehicleOptions),
		hidden(maxLen(household("vehicle_other", model.KindText, 4, "Other Vehicle", true), 100)),
		options(household(FieldJobSeeking, model.KindSingle, 4, "Job Seeking", false), jobSeekingOptions),
	}

	children := sections.Template{
		Group: model.GroupChild,
		Title: "Child",
		Max:   cfg.MaxChildren,
		Fields: []model.Field{
			options(blockField("gender", model.KindSingle, 2, "Gender", true), genderOptions),
			maxLen(blockField("firstname", model.KindTextOnly, 2, "First Name", true), 40),
			maxLen(blockField("lastname", model.KindTextOnly, 2, "Last Name", true), 40),
			blockField(ChildDOB, model.KindDate, 2, "Date of Birth", true),
			hidden(options(blockField("education", model.KindSingle, 2, "Education", true), educationOptions)),
			hidden(options(blockField("working_status", model.KindSingle, 2, "Working Status", true), workingOptions)),
			hidden(maxLen(blockField("work_details", model.KindText, 2, "Work Details", false), 100)),
			hidden(blockField("mobile", model.KindPhone, 2, "Mobile Number", false)),
			hidden(options(blockField("marital_status", model.KindSingle, 2, "Marital Status", true), childMaritalStatus)),
			hidden(maxLen(blockField("spouse_name", model.KindTextOnly, 2, "Spouse Name", false), 40)),
			hidden(blockField("spouse_mobile", model.KindPhone, 2, "Spouse Mobile Number", false)),
		},
	}

	jobSeekers := sections.Template{
		Group: model.GroupJobSeeker,
		Title: "Job Seeker",
		Max:   cfg.JobSeekerMax,
		Fields: []model.Field{
			maxLen(blockField("name", model.KindTextOnly, 4, "Name", false), 80),
			options(blockField("gender", model.KindSingle, 4, "Gender", false), append(append([]string(nil), genderOptions...), "Other")),
			maxLen(blockField("age", model.KindNumber, 4, "Age", false), 2),
			maxLen(blockField("qualification", model.KindTextOnly, 4, "Qualification", false), 100),
			maxLen(blockField("experience", model.KindText, 4, "Work Experience", false), 200),
		},
	}

	dependents := sections.Template{
		Group: model.GroupDependent,
		Fields: []model.Field{
			maxLen(blockField("name", model.KindTextOnly, 3, "Name", false), 80),
			maxLen(blockField("age", model.KindNumber, 3, "Age", false), 3),
		},
		Extra: []model.Field{
			{
				ID:        model.Dependent("dependent_other", "relationship"),
				Kind:      model.KindTextOnly,
				Step:      3,
				Label:     "Relationship with family",
				MaxLength: 40,
			},
		},
	}

	return Catalog{
		Household: fields,
		Templates: []sections.Template{children, jobSeekers, dependents},
		Rules:     defaultRules(cfg),
	}
}

func defaultRules(cfg config.Config) []rules.Rule {
	return []rules.Rule{
		rules.OtherSpecify(model.GroupNone, "head_blood_group", "head_blood_group_other", false),
		rules.OtherSpecify(model.GroupNone, "spouse_blood_group", "spouse_blood_group_other", false),
		rules.OtherSpecify(model.GroupNone, "rite", "rite_other", false),
		rules.OtherSpecify(model.GroupNone, "illness", "illness_other", true),
		rules.OtherSpecify(model.GroupNone, "conditions", "conditions_other", true),
		rules.OtherSpecify(model.GroupNone, "insurance", "insurance_other", true),
		rules.OtherSpecify(model.GroupNone, "vehicle", "vehicle_other", true),
		&rules.MaritalGate{
			Trigger:      FieldMaritalStatus,
			Full:         StatusMarried,
			PartialValue: StatusSpouseDeceased,
			Partial:      3,
			Fields: []rules.Target{
				{Name: FieldSpousePrefix},
				{Name: "spouse_firstname", Required: true},
				{Name: "spouse_lastname", Required: true},
				{Name: FieldSpouseDOB, Required: true},
				{Name: "spouse_blood_group"},
				{Name: "spouse_mobile"},
			},
			Gated:        []string{"spouse_blood_group_other"},
			DefaultField: FieldSpousePrefix,
			DefaultValue: DeceasedPrefix,
		},
		rules.NewAgeGate("child-age", model.GroupChild, ChildDOB,
			rules.Threshold{
				Min:  cfg.EducationMinAge,
				Show: []rules.Target{{Name: "education", Required: true}},
			},
			rules.Threshold{
				Min: cfg.AdultAge,
				Show: []rules.Target{
					{Name: "working_status", Required: true},
					{Name: "mobile"},
					{Name: "marital_status", Required: true},
				},
				Cascade: []string{"work_details", "spouse_name", "spouse_mobile"},
			},
		),
		rules.MustGate("child-work", model.GroupChild, "working_status",
			`working_status == "`+WorkingYes+`"`, rules.Targets("work_details")...),
		rules.MustGate("child-marriage", model.GroupChild, "marital_status",
			`marital_status == "`+StatusMarried+`"`, rules.Targets("spouse_name", "spouse_mobile")...),
		&rules.AgeAnomaly{
			Parents: []string{FieldHeadDOB, FieldSpouseDOB},
			Birth:   ChildDOB,
			Warning: ChildAgeWarning,
		},
	}
}

// Expanded lists every field the catalog can bind: the household fields,
// each positional group built to its maximum and one dependent block per
// category.
func (c Catalog) Expanded() []model.Field {
	out := append([]model.Field(nil), c.Household...)
	builder := sections.New(c.Templates...)
	for _, tpl := range c.Templates {
		if !tpl.Group.Positional() {
			continue
		}
		if change, err := builder.SetGroupCount(tpl.Group, tpl.Max); err == nil {
			out = append(out, change.Bind...)
		}
	}
	for _, field := range c.Household {
		if field.ID.Name != FieldDependents {
			continue
		}
		if change, err := builder.SetSelectedCategories(field.Options); err == nil {
			out = append(out, change.Bind...)
		}
	}
	return out
}

// JobSeekingOpen reports whether value opens the job seeker group.
func JobSeekingOpen(value string) bool {
	return value == JobSeekingFamily || value == JobSeekingRelative
}
