// Command shadow_compare replays read-only portal requests against the legacy
// API and the Go API and reports where status codes or bodies diverge.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

func main() {
	var (
		goBase           string
		legacyBase       string
		targetsPath      string
		timeout          time.Duration
		goStudentToken   string
		goProfessorToken string
		lgStudentToken   string
		lgProfessorToken string
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080/api", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:5000/api", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.StringVar(&goStudentToken, "go-student-token", os.Getenv("GO_STUDENT_TOKEN"), "Bearer token for student routes on the Go API")
	flag.StringVar(&goProfessorToken, "go-professor-token", os.Getenv("GO_PROFESSOR_TOKEN"), "Bearer token for professor routes on the Go API")
	flag.StringVar(&lgStudentToken, "legacy-student-token", os.Getenv("LEGACY_STUDENT_TOKEN"), "Bearer token for student routes on the legacy API")
	flag.StringVar(&lgProfessorToken, "legacy-professor-token", os.Getenv("LEGACY_PROFESSOR_TOKEN"), "Bearer token for professor routes on the legacy API")
	flag.Parse()

	logr, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	targets, err := loadTargets(targetsPath)
	if err != nil {
		logr.Fatal("failed to load targets", zap.String("path", targetsPath), zap.Error(err))
	}

	cmp := comparer{
		client: &http.Client{Timeout: timeout},
		goSide: endpoint{base: goBase, tokens: map[string]string{
			roleStudent:   goStudentToken,
			roleProfessor: goProfessorToken,
		}},
		legacySide: endpoint{base: legacyBase, tokens: map[string]string{
			roleStudent:   lgStudentToken,
			roleProfessor: lgProfessorToken,
		}},
	}

	var (
		results      []comparison
		breaking     int
		optionalDiff int
	)
	for _, t := range targets {
		res := cmp.compare(t)
		if res.diverged() {
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
			logr.Warn("divergence", zap.String("method", t.Method), zap.String("path", t.Path), zap.Bool("critical", t.Critical))
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}
