package helpers

const GO_TEST_ENV = "test"

// Environment variable keys.
const (
	ENV_API_BASE_URL    = "BORA_API_BASE_URL"
	ENV_MAPBOX_BASE_URL = "MAPBOX_API_BASE_URL"
	ENV_CITY_SLUG       = "BORA_CITY_SLUG"
	ENV_DB_PATH         = "BORA_DB_PATH"
	ENV_PUBLIC_BASE_URL = "BORA_PUBLIC_BASE_URL"
)

const DEFAULT_MAPBOX_BASE_URL = "https://api.mapbox.com"

// Interaction kinds accepted by POST /api/events/{id}/interact/.
const (
	INTERACTION_GOING      = "GOING"
	INTERACTION_INTERESTED = "INTERESTED"
	INTERACTION_SAVED      = "SAVED"
	INTERACTION_REPORTED   = "REPORTED"
)

var InteractionKinds = []string{
	INTERACTION_GOING,
	INTERACTION_INTERESTED,
	INTERACTION_SAVED,
	INTERACTION_REPORTED,
}

// Named date filters. Anything else non-empty is treated as a literal date.
const (
	DATE_FILTER_TODAY   = "today"
	DATE_FILTER_WEEKEND = "weekend"
	DATE_FILTER_WEEK    = "week"
)

// Backend API paths.
const (
	EVENTS_PATH       = "/api/events/"
	EVENTS_MINE_PATH  = "/api/events/mine/"
	CATEGORIES_PATH   = "/api/categories/"
	CITIES_PATH       = "/api/cities/"
	LOGIN_PATH        = "/api/auth/login/"
	REGISTER_PATH     = "/api/auth/register/"
	LOGOUT_PATH       = "/api/auth/logout/"
	REFRESH_PATH      = "/api/auth/token/refresh/"
	ME_PATH           = "/api/auth/me/"
	MAPBOX_TOKEN_PATH = "/api/auth/mapbox-token/"
)

const MAX_TAGS = 5

// DEFAULT_PIN_COLOR matches the backend's category color default.
const DEFAULT_PIN_COLOR = "#3B82F6"

const ISO_DATE_FORMAT = "2006-01-02"
