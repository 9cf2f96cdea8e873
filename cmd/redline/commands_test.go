/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
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

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCommands(t *testing.T) {
	t.Run("replay and list revisions test", func(t *testing.T) {
		dir := t.TempDir()
		script := filepath.Join(dir, "session.yml")
		saved := filepath.Join(dir, "doc.bson")
		require.NoError(t, os.WriteFile(script, []byte(`
steps:
  - op: author
    author:
      ID: alice
      Name: Alice
  - op: insert
    text: "Hello world"
  - op: track
    enabled: true
  - op: select
    from: 7
    to: 12
  - op: delete
  - op: insert
    text: "there"
`), 0600))

		var session sessionView
		out := execute(t, "replay", script, "--save", saved, "--output", "json")
		require.NoError(t, json.Unmarshal([]byte(out), &session))
		assert.Len(t, session.Steps, 6)
		assert.Equal(t, "Hello there", session.Text)
		assert.Equal(t,
			`<doc><p>Hello <insertion author="alice">there</insertion><deletion author="alice">world</deletion></p></doc>`,
			session.XML,
		)
		assert.Len(t, session.Revisions, 2)

		var revisions []revisionView
		out = execute(t, "revisions", saved, "--pending", "--kind", "deletion", "--output", "json")
		require.NoError(t, json.Unmarshal([]byte(out), &revisions))
		require.Len(t, revisions, 1)
		assert.Equal(t, "world", revisions[0].Content)
		assert.Equal(t, "alice", revisions[0].Author)

		out = execute(t, "revisions", saved, "--kind", "", "--output", "")
		assert.Contains(t, out, "CONTENT")
		assert.Contains(t, out, `"there"`)
	})

	t.Run("version test", func(t *testing.T) {
		out := execute(t, "version", "--output", "")
		assert.Contains(t, out, "Redline:")
	})

	t.Run("invalid output test", func(t *testing.T) {
		assert.Error(t, validateOutput("xml"))
		assert.NoError(t, validateOutput("yaml"))
	})
}
