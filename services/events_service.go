package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/interfaces"
	"github.com/joaovasc10/bora/types"
)

// RealEventsService talks to the /api/events/ endpoints. Reads go through a
// plain client; mutations go through the session service so the bearer
// token and refresh-on-401 contract apply.
type RealEventsService struct {
	baseUrl  string
	citySlug string
	session  interfaces.SessionServiceInterface
	client   *http.Client
}

func NewEventsService(baseUrl, citySlug string, session interfaces.SessionServiceInterface) *RealEventsService {
	return &RealEventsService{
		baseUrl:  baseUrl,
		citySlug: citySlug,
		session:  session,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchEvents issues the translated query against GET /api/events/ and
// returns the normalized FeatureCollection.
func (s *RealEventsService) FetchEvents(ctx context.Context, query url.Values) (*types.FeatureCollection, error) {
	if query == nil {
		query = url.Values{}
	}
	if s.citySlug != "" {
		query.Set("city", s.citySlug)
	}

	requestUrl := s.baseUrl + helpers.EVENTS_PATH
	if encoded := query.Encode(); encoded != "" {
		requestUrl += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating events request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("events request failed: %s", resp.Status)
	}

	return decodeFeatureCollection(resp.Body)
}

// FetchMine returns the logged-in user's own events (drafts included).
func (s *RealEventsService) FetchMine(ctx context.Context) (*types.FeatureCollection, error) {
	resp, err := s.session.AuthenticatedRequest(ctx, http.MethodGet, s.baseUrl+helpers.EVENTS_MINE_PATH, nil, "application/json")
	if err != nil {
		return nil, fmt.Errorf("error fetching my events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("my events request failed: %s", resp.Status)
	}
	return decodeFeatureCollection(resp.Body)
}

// FetchNearby wraps GET /api/events/nearby/.
func (s *RealEventsService) FetchNearby(ctx context.Context, lng, lat, radiusKm float64) (*types.FeatureCollection, error) {
	query := url.Values{}
	query.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("radius_km", strconv.FormatFloat(radiusKm, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseUrl+helpers.EVENTS_PATH+"nearby/?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating nearby request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching nearby events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nearby request failed: %s", resp.Status)
	}
	return decodeFeatureCollection(resp.Body)
}

func (s *RealEventsService) FetchCategories(ctx context.Context) ([]types.Category, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseUrl+helpers.CATEGORIES_PATH, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating categories request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching categories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("categories request failed: %s", resp.Status)
	}

	var categories []types.Category
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return nil, fmt.Errorf("error decoding categories: %w", err)
	}
	return categories, nil
}

// CreateEvent submits the draft as a multipart POST. The Content-Type with
// the multipart boundary is produced by the writer; the session layer
// forwards it untouched.
func (s *RealEventsService) CreateEvent(ctx context.Context, draft *types.DraftEvent) (*types.EventFeature, error) {
	if !draft.HasLocation() {
		return nil, interfaces.ErrNoLocation
	}

	body, contentType, err := buildEventForm(draft)
	if err != nil {
		return nil, err
	}

	resp, err := s.session.AuthenticatedRequest(ctx, http.MethodPost, s.baseUrl+helpers.EVENTS_PATH, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("error submitting event: %w", err)
	}
	defer resp.Body.Close()

	rawBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusBadRequest {
		return nil, decodeValidationError(rawBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("event creation failed: %s", resp.Status)
	}

	var feature types.EventFeature
	if err := json.Unmarshal(rawBody, &feature); err != nil {
		return nil, fmt.Errorf("error decoding created event: %w", err)
	}
	feature.Normalize()
	return &feature, nil
}

// Interact posts an interaction toggle. The backend answers 200 with a
// "<KIND> removed." detail when the toggle removed a prior interaction, and
// 201 with the created record when it added one.
func (s *RealEventsService) Interact(ctx context.Context, eventId, kind string) (*types.InteractionResult, error) {
	if eventId == "" {
		return nil, interfaces.ErrMissingEventId
	}
	valid := false
	for _, k := range helpers.InteractionKinds {
		if k == kind {
			valid = true
			break
		}
	}
	if !valid {
		return nil, interfaces.ErrInvalidKind
	}

	payload, _ := json.Marshal(map[string]string{"interaction_type": kind})
	requestUrl := s.baseUrl + helpers.EVENTS_PATH + eventId + "/interact/"
	resp, err := s.session.AuthenticatedRequest(ctx, http.MethodPost, requestUrl, payload, "application/json")
	if err != nil {
		return nil, fmt.Errorf("error posting interaction: %w", err)
	}
	defer resp.Body.Close()

	rawBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("interaction failed: %s", resp.Status)
	}

	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rawBody, &detail); err != nil {
		log.Printf("Error decoding interaction response: %v", err)
	}

	return &types.InteractionResult{
		Kind:    kind,
		Removed: strings.Contains(detail.Detail, "removed"),
		Detail:  detail.Detail,
	}, nil
}

func decodeFeatureCollection(r io.Reader) (*types.FeatureCollection, error) {
	var fc types.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("error decoding feature collection: %w", err)
	}
	fc.Normalize()
	if fc.Features == nil {
		fc.Features = []types.EventFeature{}
	}
	return &fc, nil
}

func decodeValidationError(rawBody []byte) error {
	fields := map[string][]string{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rawBody, &raw); err != nil {
		return &types.ValidationError{Fields: map[string][]string{"form": {string(rawBody)}}}
	}
	for field, value := range raw {
		var list []string
		if json.Unmarshal(value, &list) == nil {
			fields[field] = list
			continue
		}
		var single string
		if json.Unmarshal(value, &single) == nil {
			fields[field] = []string{single}
		}
	}
	return &types.ValidationError{Fields: fields}
}

// buildEventForm assembles the multipart payload: all form fields, city id,
// free flag, the tag list as a serialized JSON array, and the optional
// cover image.
func buildEventForm(draft *types.DraftEvent) (body []byte, contentType string, err error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	writeField := func(name, value string) {
		if value != "" {
			_ = writer.WriteField(name, value)
		}
	}

	writeField("title", draft.Title)
	writeField("description", draft.Description)
	writeField("organizer_name", draft.OrganizerName)
	writeField("category", draft.CategoryId)
	writeField("address", draft.Address)
	writeField("neighborhood", draft.Neighborhood)
	writeField("city", draft.CityId)
	writeField("start_datetime", draft.StartDatetime)
	writeField("end_datetime", draft.EndDatetime)
	writeField("price_info", draft.PriceInfo)
	writeField("instagram_url", draft.InstagramUrl)
	writeField("ticket_url", draft.TicketUrl)
	_ = writer.WriteField("is_free", strconv.FormatBool(draft.IsFree))
	_ = writer.WriteField("lng", strconv.FormatFloat(*draft.Lng, 'f', -1, 64))
	_ = writer.WriteField("lat", strconv.FormatFloat(*draft.Lat, 'f', -1, 64))
	if draft.MaxCapacity > 0 {
		_ = writer.WriteField("max_capacity", strconv.Itoa(draft.MaxCapacity))
	}

	if len(draft.TagNames) > 0 {
		tagsJson, jerr := json.Marshal(draft.TagNames)
		if jerr != nil {
			return nil, "", fmt.Errorf("error encoding tags: %w", jerr)
		}
		_ = writer.WriteField("tag_names", string(tagsJson))
	}

	if len(draft.CoverImage) > 0 {
		name := draft.CoverImageName
		if name == "" {
			name = "cover"
		}
		part, ferr := writer.CreateFormFile("cover_image", name)
		if ferr != nil {
			return nil, "", fmt.Errorf("error adding cover image: %w", ferr)
		}
		if _, werr := part.Write(draft.CoverImage); werr != nil {
			return nil, "", fmt.Errorf("error writing cover image: %w", werr)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("error finalizing form: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
