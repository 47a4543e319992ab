package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"
)

const (
	roleStudent   = "student"
	roleProfessor = "professor"
)

type target struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Role     string          `json:"role"`
	Body     json.RawMessage `json:"body,omitempty"`
	Ignore   []string        `json:"ignore,omitempty"`
	Critical bool            `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

type endpoint struct {
	base   string
	tokens map[string]string
}

type comparer struct {
	client     *http.Client
	goSide     endpoint
	legacySide endpoint
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

func (c comparison) diverged() bool {
	return c.Error != nil || !c.StatusMatch || !c.BodyMatch
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func (c comparer) compare(tgt target) comparison {
	res := comparison{Target: tgt}

	goStatus, goBody, goDur, err := c.do(c.goSide, tgt)
	if err != nil {
		res.Error = fmt.Errorf("go request failed: %w", err)
		return res
	}
	legacyStatus, legacyBody, legacyDur, err := c.do(c.legacySide, tgt)
	if err != nil {
		res.Error = fmt.Errorf("legacy request failed: %w", err)
		return res
	}

	res.GoStatus, res.LegacyStatus = goStatus, legacyStatus
	res.DurationGo, res.DurationLegacy = goDur, legacyDur
	res.StatusMatch = goStatus == legacyStatus
	res.BodyMatch = bodiesEqual(goBody, legacyBody, tgt.Ignore)
	return res
}

func (c comparer) do(side endpoint, tgt target) (int, []byte, time.Duration, error) {
	if c.client == nil {
		return 0, nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body io.Reader
	if len(tgt.Body) > 0 {
		body = bytes.NewReader(tgt.Body)
	}
	req, err := http.NewRequest(method, strings.TrimRight(side.base, "/")+path, body)
	if err != nil {
		return 0, nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := side.tokens[tgt.Role]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, payload, time.Since(start), nil
}

// bodiesEqual compares two payloads as JSON when both parse, dropping the
// ignored keys at every depth. Numeric strings such as "85.00" compare equal
// to the number they spell.
func bodiesEqual(a, b []byte, ignore []string) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	skip := make(map[string]struct{}, len(ignore))
	for _, key := range ignore {
		skip[key] = struct{}{}
	}
	return reflect.DeepEqual(normalize(aj, skip), normalize(bj, skip))
}

func normalize(v interface{}, skip map[string]struct{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, v2 := range val {
			if _, ok := skip[k]; ok {
				continue
			}
			out[k] = normalize(v2, skip)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, v2 := range val {
			out[i] = normalize(v2, skip)
		}
		return out
	case string:
		var f float64
		if _, err := fmt.Sscanf(val, "%g", &f); err == nil && fmt.Sprintf("%.2f", f) == val {
			return f
		}
		return val
	default:
		return val
	}
}

func printReport(results []comparison) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if res.diverged() {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s (%s)\n", status, res.Target.Method, res.Target.Path, res.Target.Role)
		fmt.Printf("  Go Status: %d (%s)\n", res.GoStatus, res.DurationGo)
		fmt.Printf("  Legacy Status: %d (%s)\n", res.LegacyStatus, res.DurationLegacy)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
