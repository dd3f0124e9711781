package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/af-corp/nutrigate/internal/types"
)

const (
	defaultLang      = "pt"
	defaultImageType = "image/jpeg"

	// In-memory budget for multipart parsing; larger parts spill to disk.
	// The transport-level body cap is enforced separately, before parsing.
	maxMultipartMemory = 10 << 20
)

var errMissingInput = errors.New("missing text or image")

// bodyTooLarge reports whether err came from the transport-level body cap.
func bodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// parseMealRequest normalizes the two accepted encodings into the canonical
// (text, lang, image?) tuple. A JSON body carries text and lang; a multipart
// form additionally carries an optional image file part. A malformed or
// empty body is treated as an empty request, which then fails the
// text-or-image invariant rather than producing a separate error. The one
// exception is a body truncated by the transport cap, which is rejected.
func parseMealRequest(r *http.Request) (*types.MealAnalysisRequest, error) {
	req := &types.MealAnalysisRequest{Lang: defaultLang}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var body struct {
			Text string `json:"text"`
			Lang string `json:"lang"`
		}
		// Malformed JSON degrades to an empty request; a capped body does not
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && bodyTooLarge(err) {
			return nil, err
		}
		req.Text = body.Text
		if body.Lang != "" {
			req.Lang = body.Lang
		}
	} else {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			if bodyTooLarge(err) {
				return nil, err
			}
		} else {
			req.Text = r.FormValue("text")
			if lang := r.FormValue("lang"); lang != "" {
				req.Lang = lang
			}
			if img, err := readImagePart(r); err != nil {
				return nil, err
			} else if img != nil {
				req.Image = img
			}
		}
	}

	req.Lang = strings.ToLower(req.Lang)
	if req.Text == "" && req.Image == nil {
		return nil, errMissingInput
	}
	return req, nil
}

// readImagePart reads the optional image file part in full, preserving the
// declared content type.
func readImagePart(r *http.Request) (*types.ImageAttachment, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultImageType
	}
	return &types.ImageAttachment{ContentType: contentType, Data: data}, nil
}

// parseRecommendationsPayload reads the caller's JSON verbatim. No shape is
// imposed here; the policy filter is the allow-list. A malformed body degrades
// to an empty object, but a body truncated by the transport cap is an error:
// forwarding a silently emptied payload would still invoke the model.
func parseRecommendationsPayload(r *http.Request) (any, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if bodyTooLarge(err) {
			return nil, err
		}
		return map[string]any{}, nil
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return map[string]any{}, nil
	}
	return payload, nil
}

// topLevelFields returns the sorted top-level keys of a JSON object payload.
func topLevelFields(payload any) []string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(obj))
	for k := range obj {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// collectStrings walks a decoded JSON value and gathers every string it
// contains, so filters can scan caller-controlled text wherever it hides.
func collectStrings(payload any) []string {
	var out []string
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case string:
			out = append(out, val)
		case []any:
			for _, item := range val {
				walk(item)
			}
		case map[string]any:
			for _, item := range val {
				walk(item)
			}
		}
	}
	walk(payload)
	return out
}

// MaxBodyBytes caps request bodies at the transport boundary. Reads past the
// limit fail with http.MaxBytesError, which the handlers answer with 413.
func MaxBodyBytes(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
