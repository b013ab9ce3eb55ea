/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package banner

import (
	"bytes"
	"strings"
	"testing"

	"pagedb/internal/config"
)

func TestPrintWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, false)
	out := buf.String()

	if strings.Contains(out, "\033[") {
		t.Error("Expected no ANSI codes when color is off")
	}
	if !strings.Contains(out, "(v"+Version+")") {
		t.Errorf("Version missing from banner:\n%s", out)
	}
	if !strings.Contains(out, Copyright) {
		t.Error("Copyright missing from banner")
	}
}

func TestPrintWithColor(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, true)
	if !strings.Contains(buf.String(), AnsiRed) {
		t.Error("Expected ANSI codes when color is on")
	}
}

func TestPrintWithConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ConfigFile = "/etc/pagedb/pagedb.conf"

	var buf bytes.Buffer
	PrintWithConfig(&buf, cfg, false)
	out := buf.String()

	for _, want := range []string{
		"Config: /etc/pagedb/pagedb.conf",
		"[ Storage ]",
		"Data: " + cfg.DataDir,
		"Page: 64 KB",
		"Collation: binary",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in:\n%s", want, out)
		}
	}
}
