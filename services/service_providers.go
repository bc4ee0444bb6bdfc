package services

import (
	"os"
	"sync"

	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/interfaces"
)

var (
	geoService     interfaces.GeoServiceInterface
	geoServiceOnce sync.Once

	cityService     interfaces.CityServiceInterface
	cityServiceOnce sync.Once

	// overridable in tests
	getMockGeoService  func() interfaces.GeoServiceInterface
	getMockCityService func() interfaces.CityServiceInterface
)

// GetGeoService returns the process-wide geo service, swapping in the mock
// when GO_ENV=test.
func GetGeoService() interfaces.GeoServiceInterface {
	geoServiceOnce.Do(func() {
		if os.Getenv("GO_ENV") == helpers.GO_TEST_ENV && getMockGeoService != nil {
			geoService = getMockGeoService()
		} else {
			geoService = NewGeoService(
				os.Getenv(helpers.ENV_API_BASE_URL),
				os.Getenv(helpers.ENV_MAPBOX_BASE_URL),
			)
		}
	})
	return geoService
}

func ResetGeoService() {
	geoService = nil
	geoServiceOnce = sync.Once{}
}

func GetCityService() interfaces.CityServiceInterface {
	cityServiceOnce.Do(func() {
		if os.Getenv("GO_ENV") == helpers.GO_TEST_ENV && getMockCityService != nil {
			cityService = getMockCityService()
		} else {
			cityService = NewCityService(os.Getenv(helpers.ENV_API_BASE_URL))
		}
	})
	return cityService
}

func ResetCityService() {
	cityService = nil
	cityServiceOnce = sync.Once{}
}

// SetMockGeoService registers the mock used when GO_ENV=test.
func SetMockGeoService(factory func() interfaces.GeoServiceInterface) {
	getMockGeoService = factory
}

func SetMockCityService(factory func() interfaces.CityServiceInterface) {
	getMockCityService = factory
}
