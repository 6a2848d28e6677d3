// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// VerifyComparison fetches path from the page and compares the JSON body
// to a golden file. If UPDATE_GOLDENS is true, it writes the file instead.
func VerifyComparison(t *testing.T, ctx context.Context, path, goldenFilename string) {
	t.Helper()
	body, err := FetchJSON(ctx, path)
	if err != nil {
		t.Fatalf("Failed to fetch %s: %v", path, err)
	}
	var actual bytes.Buffer
	if err := json.Indent(&actual, []byte(body), "", "  "); err != nil {
		t.Fatalf("Response of %s is not JSON: %v\n%s", path, err, body)
	}

	// We are running inside /app in container, which is root of repo.
	goldenPath := filepath.Join("tests/e2e/goldens", goldenFilename)

	if os.Getenv("UPDATE_GOLDENS") == "true" {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("Failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, actual.Bytes(), 0644); err != nil {
			t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
		}
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expectedBytes, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Errorf("Golden file missing: %s. Run with UPDATE_GOLDENS=true to create it.\nActual Content:\n%s", goldenPath, actual.String())
			return
		}
		t.Fatalf("Failed to read golden file %s: %v", goldenPath, err)
	}
	var expected bytes.Buffer
	if err := json.Indent(&expected, expectedBytes, "", "  "); err != nil {
		t.Fatalf("Golden file %s is not JSON: %v", goldenPath, err)
	}

	want := string(bytes.TrimSpace(expected.Bytes()))
	got := string(bytes.TrimSpace(actual.Bytes()))
	if got != want {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(want),
			B:        difflib.SplitLines(got),
			FromFile: "Expected",
			ToFile:   "Actual",
			Context:  3,
		})
		t.Errorf("Comparison mismatch for %s:\n%s", goldenFilename, diff)
	}
}
