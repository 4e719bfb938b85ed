package domain

// Typed payload schemas for each section. The HTTP layer binds and validates
// requests against these before calling the profile engines; the engines
// themselves store whatever JSON they are handed.

type PersonalInfo struct {
	FirstName    string `json:"firstName,omitempty" validate:"omitempty,min=2,max=50,valid_name"`
	LastName     string `json:"lastName,omitempty" validate:"omitempty,min=2,max=50,valid_name"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	UserName     string `json:"userName,omitempty" validate:"omitempty,user_name"`
	Headline     string `json:"headline,omitempty" validate:"max=220,no_emoji"`
	ProfileImage string `json:"profileImage,omitempty" validate:"omitempty,url"`
	ProfileCover string `json:"profileCover,omitempty" validate:"omitempty,url"`
	JourneyType  string `json:"journeyType,omitempty" validate:"max=40"`
	Location     string `json:"location,omitempty" validate:"max=120"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,valid_phone"`
	Gender       string `json:"gender,omitempty" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	DateOfBirth  string `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Pronouns     string `json:"pronouns,omitempty" validate:"max=30"`
}

type SocialLink struct {
	ID       string `json:"_id,omitempty"`
	Platform string `json:"platform,omitempty" validate:"required,max=40"`
	URL      string `json:"url,omitempty" validate:"required,url"`
}

type WorkExperience struct {
	ID             string   `json:"_id,omitempty"`
	Title          string   `json:"title,omitempty" validate:"required,min=2,max=100"`
	Company        string   `json:"company,omitempty" validate:"required,max=120"`
	EmploymentType string   `json:"employmentType,omitempty" validate:"omitempty,oneof=full_time part_time internship contract freelance self_employed"`
	Location       string   `json:"location,omitempty" validate:"max=120"`
	StartDate      string   `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string   `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Current        bool     `json:"current,omitempty"`
	Description    string   `json:"description,omitempty" validate:"max=2000"`
	Skills         []string `json:"skills,omitempty" validate:"omitempty,dive,max=60"`
}

type Education struct {
	ID           string `json:"_id,omitempty"`
	School       string `json:"school,omitempty" validate:"required,max=150"`
	Degree       string `json:"degree,omitempty" validate:"max=100"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty" validate:"max=100"`
	StartDate    string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Grade        string `json:"grade,omitempty" validate:"max=20"`
	Description  string `json:"description,omitempty" validate:"max=2000"`
}

type Project struct {
	ID           string   `json:"_id,omitempty"`
	Title        string   `json:"title,omitempty" validate:"required,max=120"`
	Description  string   `json:"description,omitempty" validate:"max=2000"`
	URL          string   `json:"url,omitempty" validate:"omitempty,url"`
	StartDate    string   `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string   `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Technologies []string `json:"technologies,omitempty" validate:"omitempty,dive,max=60"`
}

type Certificate struct {
	ID            string `json:"_id,omitempty"`
	Name          string `json:"name,omitempty" validate:"required,max=150"`
	Issuer        string `json:"issuer,omitempty" validate:"max=150"`
	IssueDate     string `json:"issueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate    string `json:"expiryDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CredentialID  string `json:"credentialId,omitempty" validate:"max=100"`
	CredentialURL string `json:"credentialUrl,omitempty" validate:"omitempty,url"`
}

type Publication struct {
	ID              string `json:"_id,omitempty"`
	Title           string `json:"title,omitempty" validate:"required,max=200"`
	Publisher       string `json:"publisher,omitempty" validate:"max=150"`
	PublicationDate string `json:"publicationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	URL             string `json:"url,omitempty" validate:"omitempty,url"`
	Description     string `json:"description,omitempty" validate:"max=2000"`
}

type Award struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title,omitempty" validate:"required,max=150"`
	Issuer      string `json:"issuer,omitempty" validate:"max=150"`
	Date        string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Media       string `json:"media,omitempty" validate:"omitempty,url"`
}

type Skills struct {
	Technical []string `json:"technical" validate:"dive,required,max=60"`
	Soft      []string `json:"soft" validate:"dive,required,max=60"`
}

type Language struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name,omitempty" validate:"required,max=60"`
	Proficiency string `json:"proficiency,omitempty" validate:"omitempty,oneof=elementary limited professional full_professional native"`
}

type LearningJourney struct {
	CurrentStage string   `json:"currentStage,omitempty" validate:"max=60"`
	Goals        []string `json:"goals,omitempty" validate:"omitempty,dive,max=200"`
	Resources    []string `json:"resources,omitempty" validate:"omitempty,dive,max=200"`
}

type CareerExpectations struct {
	DesiredRoles   []string `json:"desiredRoles,omitempty" validate:"omitempty,dive,max=100"`
	ExpectedSalary string   `json:"expectedSalary,omitempty" validate:"max=60"`
	WorkMode       string   `json:"workMode,omitempty" validate:"omitempty,oneof=onsite remote hybrid"`
	Locations      []string `json:"locations,omitempty" validate:"omitempty,dive,max=120"`
	NoticePeriod   string   `json:"noticePeriod,omitempty" validate:"max=60"`
}

type JobAlertPreferences struct {
	Enabled   bool     `json:"enabled"`
	Keywords  []string `json:"keywords,omitempty" validate:"omitempty,dive,max=60"`
	Frequency string   `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	Locations []string `json:"locations,omitempty" validate:"omitempty,dive,max=120"`
}

type RecentExperience struct {
	Title       string `json:"title,omitempty" validate:"max=100"`
	Company     string `json:"company,omitempty" validate:"max=120"`
	Duration    string `json:"duration,omitempty" validate:"max=60"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

type InterestsAndPreferences struct {
	Interests   []string `json:"interests,omitempty" validate:"omitempty,dive,max=60"`
	Industries  []string `json:"industries,omitempty" validate:"omitempty,dive,max=60"`
	OpenToWork  bool     `json:"openToWork,omitempty"`
	Mentorship  bool     `json:"mentorship,omitempty"`
	Preferences []string `json:"preferences,omitempty" validate:"omitempty,dive,max=100"`
}
