package pincode

import (
	"context"
	"errors"
	"time"

	"franchise-crm/internal/models"
	"franchise-crm/pkg/geocode"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
)

type ServiceInterface interface {
	// Lookup returns area, city and state for a well-formed pincode, or
	// models.ErrNotFound when neither India Post nor the fallback table knows it.
	Lookup(ctx context.Context, pincode string) (*models.PincodeInfo, error)
}

// Cache memoizes India Post answers by pincode, bounded in size and age.
type Cache = expirable.LRU[string, models.PincodeInfo]

func NewCache(size int, ttl time.Duration) *Cache {
	return expirable.NewLRU[string, models.PincodeInfo](size, nil, ttl)
}

type service struct {
	directory geocode.PostalDirectory
	cache     *Cache
	log       echo.Logger
}

func NewService(directory geocode.PostalDirectory, c *Cache, logger echo.Logger) ServiceInterface {
	return &service{directory: directory, cache: c, log: logger}
}

func (s *service) Lookup(ctx context.Context, pincode string) (*models.PincodeInfo, error) {
	if info, ok := s.cache.Get(pincode); ok {
		return &info, nil
	}

	po, err := s.directory.LookupPincode(ctx, pincode)
	if err == nil {
		info := models.PincodeInfo{
			Pincode: pincode,
			Area:    po.Name,
			City:    po.District,
			State:   po.State,
			Source:  models.PincodeSourceAPI,
		}
		s.cache.Add(pincode, info)
		return &info, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.log.Warnf("pincode: india post lookup %s: %v", pincode, err)
	}

	// Fallback answers are not cached so a recovered India Post wins next time.
	if info, ok := lookupFallback(pincode); ok {
		return &info, nil
	}
	return nil, models.ErrNotFound
}
