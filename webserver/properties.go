package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/services"
	"github.com/stayloop/booking-service/utils"
)

func (s *Server) listProperties(c *gin.Context) {
	limit, offset := pagination(c)

	q := s.db.Model(&models.Property{})
	if loc := c.Query("location"); loc != "" {
		q = q.Where("location LIKE ?", "%"+loc+"%")
	}
	if pt := c.Query("property_type"); pt != "" {
		q = q.Where("property_type = ?", pt)
	}
	if min := c.Query("min_price"); min != "" {
		cents, err := parsePrice(min)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_price"})
			return
		}
		q = q.Where("price_cents >= ?", cents)
	}
	if max := c.Query("max_price"); max != "" {
		cents, err := parsePrice(max)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price"})
			return
		}
		q = q.Where("price_cents <= ?", cents)
	}

	// Date-range filter: exclude properties with an active booking
	// overlapping [available_from, available_to).
	from, to := c.Query("available_from"), c.Query("available_to")
	if from != "" && to != "" {
		start, err1 := utils.ParseDate(from)
		end, err2 := utils.ParseDate(to)
		if err1 != nil || err2 != nil || !end.After(start) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid availability range"})
			return
		}
		booked := s.db.Model(&models.Booking{}).
			Select("property_id").
			Where("status IN ? AND start_date < ? AND end_date > ?",
				[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}, end, start)
		q = q.Where("is_available = ?", true).Where("id NOT IN (?)", booked)
	}

	var properties []models.Property
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&properties).Error; err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]propertyListItem, 0, len(properties))
	for i := range properties {
		avg, _, err := services.AverageRating(s.db, properties[i].ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		out = append(out, projectPropertyList(&properties[i], avg))
	}
	c.JSON(http.StatusOK, gin.H{"properties": out, "count": len(out)})
}

func (s *Server) getProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var property models.Property
	if err := s.db.First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		s.respondError(c, err)
		return
	}
	avg, count, err := services.AverageRating(s.db, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectPropertyDetail(&property, avg, count))
}

type propertyRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Location      string `json:"location" binding:"required"`
	PricePerNight string `json:"price_per_night" binding:"required"`
	PropertyType  string `json:"property_type"`
	MaxGuests     int    `json:"max_guests"`
	Bedrooms      int    `json:"bedrooms"`
	Bathrooms     int    `json:"bathrooms"`
	Amenities     string `json:"amenities"`
	IsAvailable   *bool  `json:"is_available"`
}

func (s *Server) createProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cents, err := parsePrice(req.PricePerNight)
	if err != nil || cents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_per_night"})
		return
	}
	property := models.Property{
		HostID:       actorID(c),
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		PriceCents:   cents,
		PropertyType: models.PropertyType(req.PropertyType),
		MaxGuests:    req.MaxGuests,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Amenities:    req.Amenities,
		IsAvailable:  true,
	}
	if property.PropertyType == "" {
		property.PropertyType = models.PropertyApartment
	}
	if property.MaxGuests <= 0 {
		property.MaxGuests = 1
	}
	if req.IsAvailable != nil {
		property.IsAvailable = *req.IsAvailable
	}
	if err := utils.Validate.Struct(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.db.Create(&property).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projectPropertyDetail(&property, 0, 0))
}

func (s *Server) updateProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var property models.Property
	if err := s.db.First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		s.respondError(c, err)
		return
	}
	if property.HostID != actorID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can update this property"})
		return
	}

	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cents, err := parsePrice(req.PricePerNight)
	if err != nil || cents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_per_night"})
		return
	}
	property.Name = req.Name
	property.Description = req.Description
	property.Location = req.Location
	property.PriceCents = cents
	if req.PropertyType != "" {
		property.PropertyType = models.PropertyType(req.PropertyType)
	}
	if req.MaxGuests > 0 {
		property.MaxGuests = req.MaxGuests
	}
	property.Bedrooms = req.Bedrooms
	property.Bathrooms = req.Bathrooms
	property.Amenities = req.Amenities
	if req.IsAvailable != nil {
		property.IsAvailable = *req.IsAvailable
	}
	if err := utils.Validate.Struct(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.db.Save(&property).Error; err != nil {
		s.respondError(c, err)
		return
	}
	avg, count, _ := services.AverageRating(s.db, id)
	c.JSON(http.StatusOK, projectPropertyDetail(&property, avg, count))
}

func (s *Server) deleteProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var property models.Property
	if err := s.db.First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		s.respondError(c, err)
		return
	}
	if property.HostID != actorID(c) && c.GetString(ctxUserRole) != models.AdminRole {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can delete this property"})
		return
	}
	var active int64
	if err := s.db.Model(&models.Booking{}).
		Where("property_id = ? AND status IN ?", id,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}).
		Count(&active).Error; err != nil {
		s.respondError(c, err)
		return
	}
	if active > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "property has active bookings"})
		return
	}
	if err := s.db.Delete(&property).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// propertyAvailability answers "can I book these dates" and quotes the
// total without creating anything.
func (s *Server) propertyAvailability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	start, err1 := utils.ParseDate(c.Query("start_date"))
	end, err2 := utils.ParseDate(c.Query("end_date"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required as YYYY-MM-DD"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be after start_date"})
		return
	}

	var property models.Property
	if err := s.db.First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		s.respondError(c, err)
		return
	}
	available, err := services.IsAvailable(s.db, &property, start, end, 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	total, err := services.ComputeTotal(property.PriceCents, start, end)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"property_id":     property.ID,
		"start_date":      start.Format(utils.DateLayout),
		"end_date":        end.Format(utils.DateLayout),
		"available":       available,
		"price_per_night": services.FormatCents(property.PriceCents),
		"total_price":     services.FormatCents(total),
	})
}
