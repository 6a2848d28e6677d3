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

package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime"

	"github.com/ttbt-io/playerradar/backend/chart"
)

// ExportFilename returns the download name of a chart comparing a and b.
func ExportFilename(a, b Player) string {
	return a.Name + "_vs_" + b.Name + ".png"
}

// ImageEncoder is a rendered chart that can be serialized as a PNG.
type ImageEncoder interface {
	EncodePNG(w io.Writer) error
}

// ExportedImage is an encoded chart ready to be downloaded.
type ExportedImage struct {
	Filename string
	Data     []byte
}

// ContentDisposition returns the attachment header value for the image.
func (e *ExportedImage) ContentDisposition() string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": e.Filename})
}

// WriteTo writes the PNG bytes to w.
func (e *ExportedImage) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.Data)
	return int64(n), err
}

// Export encodes the chart for download. A nil chart means nothing has been
// rendered yet; Export then does nothing and reports ok=false.
func Export(rendered ImageEncoder, a, b Player) (img *ExportedImage, ok bool, err error) {
	if rendered == nil {
		return nil, false, nil
	}
	if r, ok := rendered.(*chart.Radar); ok && r == nil {
		return nil, false, nil
	}
	var buf bytes.Buffer
	if err := rendered.EncodePNG(&buf); err != nil {
		return nil, false, fmt.Errorf("export %s: %w", ExportFilename(a, b), err)
	}
	return &ExportedImage{Filename: ExportFilename(a, b), Data: buf.Bytes()}, true, nil
}
