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
	"github.com/ttbt-io/playerradar/tools/e2ehelpers"
)

var DisableCSSAnimations = e2ehelpers.DisableCSSAnimations
var CaptureScreenshot = e2ehelpers.CaptureScreenshot
var OpenComparator = e2ehelpers.OpenComparator
var SelectPlayer = e2ehelpers.SelectPlayer
var Swap = e2ehelpers.Swap
var WaitChart = e2ehelpers.WaitChart
var WaitNames = e2ehelpers.WaitNames
var Selection = e2ehelpers.Selection
var FetchJSON = e2ehelpers.FetchJSON
var Export = e2ehelpers.Export
