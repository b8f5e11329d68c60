// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backup

import (
	"bufio"
	"os"
	"regexp"
)

// FallbackVersion is used when a tracked file carries no version comment
const FallbackVersion = "unknown"

// versionHeadLines bounds how deep into the file the comment may sit
const versionHeadLines = 10

// versionPattern matches the scripts' `# Version: 2.15 (...)` header
var versionPattern = regexp.MustCompile(`^#\s*Version:\s*([^\s(]+)`)

// 🔖 ExtractVersion reads the version label from a recognized comment
// near the top of the file. An unreadable file or a missing comment
// falls back to FallbackVersion.
func ExtractVersion(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return FallbackVersion
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for i := 0; i < versionHeadLines && scanner.Scan(); i++ {
		if m := versionPattern.FindStringSubmatch(scanner.Text()); m != nil {
			return m[1]
		}
	}
	return FallbackVersion
}
