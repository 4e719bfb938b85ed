package v1

import (
	"context"
	"net/http"

	"go-profile-backend/internal/delivery/http/response"
	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/logger"
	"go-profile-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

// MediaStore uploads a validated file and returns its public URL
type MediaStore interface {
	Store(ctx context.Context, ownerID, folder string, up storage.Upload) (string, error)
	Discard(ctx context.Context, url string) error
}

type sectionRoute struct {
	path    string
	section domain.SectionName
}

// Scalar sections replaced as a whole value
var scalarRoutes = []sectionRoute{
	{"personal-info", domain.SectionPersonalInfo},
	{"profile-summary", domain.SectionProfileSummary},
	{"contact", domain.SectionContactInfo},
	{"learning-journey", domain.SectionLearningJourney},
	{"career-expectations", domain.SectionCareerExpectations},
	{"job-alert-preferences", domain.SectionJobAlertPreferences},
	{"recent-experience", domain.SectionRecentExperience},
	{"interests-preferences", domain.SectionInterestsAndPreferences},
}

// Lists written atomically through the array-field path
var arrayRoutes = []sectionRoute{
	{"skills", domain.SectionSkills},
	{"interests", domain.SectionInterests},
	{"languages", domain.SectionLanguages},
	{"social-links", domain.SectionSocialLinks},
}

// Collections replaced as a whole section
var collectionRoutes = []sectionRoute{
	{"work-experience", domain.SectionWorkExperience},
	{"education", domain.SectionEducation},
	{"projects", domain.SectionProjects},
	{"certificates", domain.SectionCertificates},
}

// Collections addressed item by item
var itemRoutes = []sectionRoute{
	{"work-experience", domain.SectionWorkExperience},
	{"education", domain.SectionEducation},
	{"projects", domain.SectionProjects},
	{"certificates", domain.SectionCertificates},
	{"publications", domain.SectionPublications},
	{"awards", domain.SectionAwardsAchievements},
	{"social-links", domain.SectionSocialLinks},
}

// Object-storage folders per media target
const (
	folderProfileImages = "profile-images"
	folderProfileCovers = "profile-covers"
)

var itemMediaFolders = map[domain.SectionName]string{
	domain.SectionCertificates:       "certificates",
	domain.SectionAwardsAchievements: "awards",
}

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
	binder    *sectionBinder
	media     MediaStore
}

// NewProfileHandler registers profile routes. media may be nil, in which case
// upload routes reject files. uploadLimit guards every route that accepts files.
func NewProfileHandler(public, protected *gin.RouterGroup, profileUC domain.ProfileUsecase, media MediaStore, uploadLimit gin.HandlerFunc) {
	handler := &ProfileHandler{
		profileUC: profileUC,
		binder:    newSectionBinder(),
		media:     media,
	}
	if uploadLimit == nil {
		uploadLimit = func(c *gin.Context) { c.Next() }
	}

	public.GET("/profiles/username/:username", handler.GetByUserName)

	profile := protected.Group("/profile")
	{
		profile.GET("", handler.GetMyProfile)
		profile.GET("/export", handler.ExportProfile)
		profile.POST("", handler.UpsertProfile)
		profile.PUT("", handler.UpsertProfile)
		profile.DELETE("", handler.DeleteProfile)
		profile.PUT("/media", uploadLimit, handler.UpdateMedia)

		for _, route := range scalarRoutes {
			profile.PUT("/"+route.path, handler.replaceSection(route.section))
		}
		for _, route := range collectionRoutes {
			profile.PUT("/"+route.path, handler.replaceSection(route.section))
		}
		for _, route := range arrayRoutes {
			profile.PUT("/"+route.path, handler.replaceArray(route.section))
		}
		for _, route := range itemRoutes {
			spec, _ := domain.LookupSection(route.section)
			add, update := []gin.HandlerFunc{}, []gin.HandlerFunc{}
			if spec.MediaFormFile != "" {
				add = append(add, uploadLimit)
				update = append(update, uploadLimit)
			}
			profile.POST("/"+route.path, append(add, handler.addItem(route.section))...)
			profile.PUT("/"+route.path+"/:itemId", append(update, handler.updateItem(route.section))...)
			profile.DELETE("/"+route.path+"/:itemId", handler.deleteItem(route.section))
		}
	}
}

func ownerID(c *gin.Context) string {
	return c.GetString(string(domain.KeyUserID))
}

// GetMyProfile godoc
// @Summary      Get my profile
// @Description  Get the profile of the current user with follower and following IDs
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profile [get]
// @Security     BearerAuth
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	result, err := h.profileUC.GetByOwner(c, ownerID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Result(c, http.StatusOK, result)
}

// ExportProfile godoc
// @Summary      Export my profile
// @Description  Downloads the profile as an Excel workbook, or one list section as CSV
// @Tags         profile
// @Produce      application/octet-stream
// @Param        format   query     string  false  "Export format (xlsx, csv). Default: xlsx"
// @Param        section  query     string  false  "List section to export; required for csv"
// @Success      200  {file}    binary
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profile/export [get]
// @Security     BearerAuth
func (h *ProfileHandler) ExportProfile(c *gin.Context) {
	format := c.DefaultQuery("format", domain.ExportXLSX)
	section := domain.SectionName(c.Query("section"))

	export, err := h.profileUC.ExportProfile(c, ownerID(c), format, section)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+export.Filename)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// GetByUserName godoc
// @Summary      Get a public profile
// @Description  Get a profile by its owner's user name
// @Tags         profile
// @Produce      json
// @Param        username  path      string  true  "User name"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profiles/username/{username} [get]
func (h *ProfileHandler) GetByUserName(c *gin.Context) {
	userName := c.Param("username")
	if userName == "" {
		c.Error(apperror.BadRequest("Username is required"))
		return
	}
	result, err := h.profileUC.GetByUserName(c, userName)
	if err != nil {
		c.Error(err)
		return
	}
	response.Result(c, http.StatusOK, result)
}

// UpsertProfile godoc
// @Summary      Create or update profile
// @Description  Merge the given sections into the current user's profile, creating it when absent
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "Sections keyed by name"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /profile [post]
// @Security     BearerAuth
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(apperror.BadRequest("Request body must be a JSON object"))
		return
	}

	bound, err := h.binder.bindDocument(domain.Fields(payload))
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.profileUC.UpsertProfile(c, ownerID(c), bound)
	if err != nil {
		c.Error(err)
		return
	}
	response.Result(c, http.StatusOK, result)
}

// DeleteProfile godoc
// @Summary      Delete my profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profile [delete]
// @Security     BearerAuth
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	result, err := h.profileUC.DeleteProfile(c, ownerID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Result(c, http.StatusOK, result)
}

// sectionBody reads a JSON body. A body of the form {"<section>": value}
// is unwrapped to value.
func sectionBody(c *gin.Context, section domain.SectionName) (any, error) {
	var body any
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, apperror.BadRequest("Invalid JSON body")
	}
	if obj, ok := body.(map[string]any); ok && len(obj) == 1 {
		if inner, wrapped := obj[string(section)]; wrapped {
			return inner, nil
		}
	}
	return body, nil
}

// replaceSection godoc
// @Summary      Replace a section
// @Description  Overwrite one section of the current user's profile, creating the profile when absent
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        section  path      string  true  "Section route, e.g. personal-info or work-experience"
// @Param        request  body      object  true  "Section value"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /profile/{section} [put]
// @Security     BearerAuth
func (h *ProfileHandler) replaceSection(section domain.SectionName) gin.HandlerFunc {
	spec, _ := domain.LookupSection(section)
	return func(c *gin.Context) {
		body, err := sectionBody(c, section)
		if err != nil {
			c.Error(err)
			return
		}
		value, err := h.binder.bindValue(spec, body)
		if err != nil {
			c.Error(err)
			return
		}
		result, err := h.profileUC.ReplaceSection(c, ownerID(c), section, value)
		if err != nil {
			c.Error(err)
			return
		}
		response.Result(c, http.StatusOK, result)
	}
}

func (h *ProfileHandler) replaceArray(field domain.SectionName) gin.HandlerFunc {
	spec, _ := domain.LookupSection(field)
	return func(c *gin.Context) {
		body, err := sectionBody(c, field)
		if err != nil {
			c.Error(err)
			return
		}
		value, err := h.binder.bindValue(spec, body)
		if err != nil {
			c.Error(err)
			return
		}
		result, err := h.profileUC.ReplaceArrayField(c, ownerID(c), field, value)
		if err != nil {
			c.Error(err)
			return
		}
		response.Result(c, http.StatusOK, result)
	}
}

// addItem godoc
// @Summary      Add an item
// @Description  Append one item to a collection section. Certificates and awards also accept multipart with a file.
// @Tags         profile
// @Accept       json,mpfd
// @Produce      json
// @Param        collection  path      string  true  "Collection route, e.g. education"
// @Param        request     body      object  true  "Item fields"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profile/{collection} [post]
// @Security     BearerAuth
func (h *ProfileHandler) addItem(section domain.SectionName) gin.HandlerFunc {
	spec, _ := domain.LookupSection(section)
	return func(c *gin.Context) {
		fields, uploaded, err := h.itemPayload(c, spec)
		if err != nil {
			c.Error(err)
			return
		}
		item, err := h.binder.bindItem(spec, fields)
		if err != nil {
			h.discard(c, uploaded...)
			c.Error(err)
			return
		}
		result, err := h.profileUC.AddItem(c, ownerID(c), section, item)
		if err != nil {
			h.discard(c, uploaded...)
			c.Error(err)
			return
		}
		response.Result(c, http.StatusOK, result)
	}
}

// updateItem godoc
// @Summary      Update an item
// @Description  Merge fields into one item of a collection section
// @Tags         profile
// @Accept       json,mpfd
// @Produce      json
// @Param        collection  path      string  true  "Collection route, e.g. education"
// @Param        itemId      path      string  true  "Item ID"
// @Param        request     body      object  true  "Fields to change"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profile/{collection}/{itemId} [put]
// @Security     BearerAuth
func (h *ProfileHandler) updateItem(section domain.SectionName) gin.HandlerFunc {
	spec, _ := domain.LookupSection(section)
	return func(c *gin.Context) {
		fields, uploaded, err := h.itemPayload(c, spec)
		if err != nil {
			c.Error(err)
			return
		}
		patch, err := h.binder.bindPatch(spec, fields)
		if err != nil {
			h.discard(c, uploaded...)
			c.Error(err)
			return
		}
		result, err := h.profileUC.UpdateItem(c, ownerID(c), section, c.Param("itemId"), patch)
		if err != nil {
			h.discard(c, uploaded...)
			c.Error(err)
			return
		}
		response.Result(c, http.StatusOK, result)
	}
}

// deleteItem godoc
// @Summary      Delete an item
// @Tags         profile
// @Produce      json
// @Param        collection  path      string  true  "Collection route, e.g. education"
// @Param        itemId      path      string  true  "Item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profile/{collection}/{itemId} [delete]
// @Security     BearerAuth
func (h *ProfileHandler) deleteItem(section domain.SectionName) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.profileUC.DeleteItem(c, ownerID(c), section, c.Param("itemId"))
		if err != nil {
			c.Error(err)
			return
		}
		response.Result(c, http.StatusOK, result)
	}
}

// UpdateMedia godoc
// @Summary      Update profile image and cover
// @Description  Upload profileImage and/or profileCover files and store their URLs in personalInfo
// @Tags         profile
// @Accept       mpfd
// @Produce      json
// @Param        profileImage  formData  file  false  "Profile image"
// @Param        profileCover  formData  file  false  "Cover image"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profile/media [put]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateMedia(c *gin.Context) {
	owner := ownerID(c)

	var media domain.ProfileMedia
	var stored []string
	targets := []struct {
		field  string
		folder string
		dest   *string
	}{
		{"profileImage", folderProfileImages, &media.ProfileImage},
		{"profileCover", folderProfileCovers, &media.ProfileCover},
	}
	for _, t := range targets {
		up, ok, err := formUpload(c, t.field, false)
		if err != nil {
			h.discard(c, stored...)
			c.Error(err)
			return
		}
		if !ok {
			continue
		}
		url, err := h.store(c, owner, t.folder, up)
		if err != nil {
			h.discard(c, stored...)
			c.Error(err)
			return
		}
		*t.dest = url
		stored = append(stored, url)
	}

	result, err := h.profileUC.UpdateMedia(c, owner, media)
	if err != nil {
		h.discard(c, stored...)
		c.Error(err)
		return
	}
	response.Result(c, http.StatusOK, result)
}

func (h *ProfileHandler) store(ctx context.Context, owner, folder string, up storage.Upload) (string, error) {
	if h.media == nil {
		return "", apperror.New(http.StatusServiceUnavailable, apperror.KindInternal, "Media storage is not configured", nil)
	}
	return h.media.Store(ctx, owner, folder, up)
}

// discard removes objects uploaded earlier in a request that then failed
func (h *ProfileHandler) discard(c *gin.Context, urls ...string) {
	if h.media == nil {
		return
	}
	for _, url := range urls {
		if err := h.media.Discard(c, url); err != nil {
			logger.Log.Error("Failed to discard orphaned media", "owner_id", ownerID(c), "url", url, "error", err)
		}
	}
}

// itemPayload reads item fields from JSON or multipart and folds an uploaded
// file's URL into the section's media field. uploaded lists objects stored
// while reading the request.
func (h *ProfileHandler) itemPayload(c *gin.Context, spec domain.SectionSpec) (fields domain.Fields, uploaded []string, err error) {
	if c.ContentType() != "multipart/form-data" {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, nil, apperror.BadRequest("Request body must be a JSON object")
		}
		return domain.Fields(body), nil, nil
	}

	fields, err = formFields(c)
	if err != nil {
		return nil, nil, err
	}
	if spec.MediaFormFile == "" {
		return fields, nil, nil
	}

	up, ok, err := formUpload(c, spec.MediaFormFile, true)
	if err != nil || !ok {
		return fields, nil, err
	}
	url, err := h.store(c, ownerID(c), itemMediaFolders[spec.Name], up)
	if err != nil {
		return nil, nil, err
	}
	fields[spec.MediaField] = url
	return fields, []string{url}, nil
}
