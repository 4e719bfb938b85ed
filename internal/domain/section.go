package domain

import (
	"reflect"
	"sort"
)

// SectionName is the top-level key of a section inside a Profile document.
type SectionName string

const (
	SectionPersonalInfo            SectionName = "personalInfo"
	SectionContactInfo             SectionName = "contactInfo"
	SectionProfileSummary          SectionName = "profileSummary"
	SectionLearningJourney         SectionName = "learningJourney"
	SectionCareerExpectations      SectionName = "careerExpectations"
	SectionJobAlertPreferences     SectionName = "jobAlertPreferences"
	SectionRecentExperience        SectionName = "recentExperience"
	SectionInterestsAndPreferences SectionName = "interestsAndPreferences"

	SectionSocialLinks        SectionName = "socialLinks"
	SectionWorkExperience     SectionName = "workExperience"
	SectionEducation          SectionName = "education"
	SectionProjects           SectionName = "projects"
	SectionCertificates       SectionName = "certificates"
	SectionPublications       SectionName = "publications"
	SectionAwardsAchievements SectionName = "awardsAchievements"
	SectionSkills             SectionName = "skills"
	SectionInterests          SectionName = "interests"
	SectionLanguages          SectionName = "languages"
)

// SectionKind tells whether a section holds a single value or a list of items.
type SectionKind string

const (
	SectionScalar     SectionKind = "scalar"
	SectionCollection SectionKind = "collection"
)

// SectionSpec is one entry of the section registry.
type SectionSpec struct {
	Name SectionName
	Kind SectionKind
	// SupportsItemOps enables add/update/delete addressed by item identifier.
	SupportsItemOps bool
	// ArrayReplace marks sections written as a whole list through the
	// array-field write path.
	ArrayReplace bool
	// MediaField is the item (or personalInfo) field that receives an uploaded
	// file URL; MediaFormFile is the multipart field carrying that file.
	MediaField    string
	MediaFormFile string
	// ElemTag validates non-struct collection elements (e.g. interest strings).
	// ValueTag validates non-struct scalar values (e.g. the summary text).
	ElemTag  string
	ValueTag string

	schema reflect.Type // type of the whole section value
	item   reflect.Type // type of one collection item, nil for scalars
}

// NewValue returns a pointer to a zero value of the section's typed schema.
func (s SectionSpec) NewValue() any {
	return reflect.New(s.schema).Interface()
}

// NewItem returns a pointer to a zero item of the section's typed schema,
// or nil when the section has no object items.
func (s SectionSpec) NewItem() any {
	if s.item == nil || s.item.Kind() != reflect.Struct {
		return nil
	}
	return reflect.New(s.item).Interface()
}

func (s SectionSpec) IsCollection() bool {
	return s.Kind == SectionCollection
}

var sectionRegistry = map[SectionName]SectionSpec{}

func register(spec SectionSpec) {
	if _, dup := sectionRegistry[spec.Name]; dup {
		panic("domain: section registered twice: " + string(spec.Name))
	}
	sectionRegistry[spec.Name] = spec
}

func scalar(name SectionName, schema any) SectionSpec {
	return SectionSpec{Name: name, Kind: SectionScalar, schema: reflect.TypeOf(schema)}
}

func collection[T any](name SectionName, itemOps bool) SectionSpec {
	var items []T
	t := reflect.TypeOf(items)
	return SectionSpec{
		Name:            name,
		Kind:            SectionCollection,
		SupportsItemOps: itemOps,
		schema:          t,
		item:            t.Elem(),
	}
}

func init() {
	personal := scalar(SectionPersonalInfo, PersonalInfo{})
	personal.MediaField = "profileImage"
	register(personal)

	contact := scalar(SectionContactInfo, map[string]string{})
	contact.ValueTag = "dive,keys,required,max=50,endkeys,max=500"
	register(contact)

	summary := scalar(SectionProfileSummary, "")
	summary.ValueTag = "max=5000"
	register(summary)

	register(scalar(SectionLearningJourney, LearningJourney{}))
	register(scalar(SectionCareerExpectations, CareerExpectations{}))
	register(scalar(SectionJobAlertPreferences, JobAlertPreferences{}))
	register(scalar(SectionRecentExperience, RecentExperience{}))
	register(scalar(SectionInterestsAndPreferences, InterestsAndPreferences{}))

	// socialLinks is reachable through both the item path and the
	// whole-list path; which one is exposed is a routing decision.
	social := collection[SocialLink](SectionSocialLinks, true)
	social.ArrayReplace = true
	register(social)

	register(collection[WorkExperience](SectionWorkExperience, true))
	register(collection[Education](SectionEducation, true))
	register(collection[Project](SectionProjects, true))

	cert := collection[Certificate](SectionCertificates, true)
	cert.MediaField = "credentialUrl"
	cert.MediaFormFile = "certificateImage"
	register(cert)

	register(collection[Publication](SectionPublications, true))

	award := collection[Award](SectionAwardsAchievements, true)
	award.MediaField = "media"
	award.MediaFormFile = "media"
	register(award)

	skills := SectionSpec{
		Name:         SectionSkills,
		Kind:         SectionCollection,
		ArrayReplace: true,
		schema:       reflect.TypeOf(Skills{}),
	}
	register(skills)

	interests := collection[string](SectionInterests, false)
	interests.ArrayReplace = true
	interests.ElemTag = "required,max=60"
	register(interests)

	languages := collection[Language](SectionLanguages, false)
	languages.ArrayReplace = true
	register(languages)
}

// LookupSection returns the registry entry for name.
func LookupSection(name SectionName) (SectionSpec, bool) {
	spec, ok := sectionRegistry[name]
	return spec, ok
}

// Sections lists every registered section sorted by name.
func Sections() []SectionSpec {
	specs := make([]SectionSpec, 0, len(sectionRegistry))
	for _, spec := range sectionRegistry {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// reservedKeys are document identity fields that payloads can never write.
var reservedKeys = map[string]bool{
	"_id":         true,
	"id":          true,
	"ownerId":     true,
	"userId":      true,
	"lastUpdated": true,
	"createdAt":   true,
	"updatedAt":   true,
	"__v":         true,
}

// IsReservedKey reports whether key names a document identity field.
func IsReservedKey(key string) bool {
	return reservedKeys[key]
}
