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

package e2ehelpers

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// CaptureScreenshot captures a screenshot and saves it to the specified filename.
func CaptureScreenshot(ctx context.Context, filename string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for screenshot: %w", err)
	}

	if err := os.WriteFile(filename, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	log.Printf("Saved screenshot to %s", filename)
	return nil
}

func DisableCSSAnimations() chromedp.ActionFunc {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.Evaluate(`
                        const style = document.createElement('style');
                        style.innerHTML = '*{-webkit-transition-duration:0s!important;transition-duration:0s!important;-webkit-animation-duration:0s!important;animation-duration:0s!important;}';
                        document.head.appendChild(style);
                `, nil).Do(ctx)
	})
}

// --- Navigation ---

// OpenComparator loads the landing page, follows its link to the
// comparator and waits for the first chart.
func OpenComparator(ctx context.Context, baseURL string) error {
	return chromedp.Run(ctx,
		chromedp.Navigate(baseURL+"/"),
		DisableCSSAnimations(),
		chromedp.WaitVisible("#link-compare", chromedp.ByID),
		chromedp.Click("#link-compare", chromedp.ByID),
		chromedp.WaitVisible("#select-a", chromedp.ByID),
		DisableCSSAnimations(),
		WaitChart(),
	)
}

// --- Comparator ---

// SelectPlayer picks id in the selector of slot "a" or "b" the way a user
// would, firing the change event.
func SelectPlayer(slot, id string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const el = document.querySelector('#select-%s');
			if (!el) {
				throw new Error("SelectPlayer: no selector for slot %s");
			}
			el.value = '%s';
			el.dispatchEvent(new Event('change', {bubbles: true}));
		})()
	`, slot, slot, id), nil)
}

// Swap clicks the swap button.
func Swap() chromedp.Action {
	return chromedp.Click("#btn-swap", chromedp.ByID)
}

// WaitChart waits until the chart image is loaded and the export button is
// enabled.
func WaitChart() chromedp.Action {
	return chromedp.Poll(`
		(() => {
			const img = document.getElementById('chart');
			const btn = document.getElementById('btn-export');
			return img && img.complete && img.naturalWidth > 0 && btn && !btn.disabled;
		})()
	`, nil, chromedp.WithPollingInterval(100*time.Millisecond), chromedp.WithPollingTimeout(10*time.Second))
}

// WaitNames waits until the chart header shows the two display names.
func WaitNames(nameA, nameB string) chromedp.Action {
	return chromedp.Poll(fmt.Sprintf(`
		document.getElementById('name-a').textContent === %q &&
		document.getElementById('name-b').textContent === %q
	`, nameA, nameB), nil, chromedp.WithPollingInterval(100*time.Millisecond), chromedp.WithPollingTimeout(10*time.Second))
}

// Selection reads the ids shown by both selectors.
func Selection(ctx context.Context) (a, b string, err error) {
	err = chromedp.Run(ctx,
		chromedp.Value("#select-a", &a, chromedp.ByID),
		chromedp.Value("#select-b", &b, chromedp.ByID),
	)
	return a, b, err
}

// FetchJSON fetches path from the page's origin and returns the body.
func FetchJSON(ctx context.Context, path string) (string, error) {
	var body string
	err := chromedp.Run(ctx, chromedp.Evaluate(
		fmt.Sprintf(`fetch(%q).then(r => r.text())`, path),
		&body,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		},
	))
	return body, err
}

// --- Export ---

// Export clicks the export button and returns the file name the browser
// was asked to save. Files are written to dir.
func Export(ctx context.Context, dir string) (string, error) {
	started := make(chan string, 1)
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()
	chromedp.ListenTarget(lctx, func(ev any) {
		if ev, ok := ev.(*browser.EventDownloadWillBegin); ok {
			select {
			case started <- ev.SuggestedFilename:
			default:
			}
		}
	})

	if err := chromedp.Run(ctx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(dir).
			WithEventsEnabled(true),
		chromedp.Click("#btn-export", chromedp.ByID),
	); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	select {
	case name := <-started:
		return name, nil
	case <-time.After(10 * time.Second):
		return "", fmt.Errorf("export: no download started")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
