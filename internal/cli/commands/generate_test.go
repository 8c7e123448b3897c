package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCommand(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(oldWd)

	cmd := NewGenerateCommand()
	cmd.SetArgs([]string{"-o", filepath.Join(tmpDir, "out")})
	require.NoError(t, cmd.Execute())

	generated, err := os.ReadFile(filepath.Join(tmpDir, "out", "dataman_models.ts"))
	require.NoError(t, err)

	content := string(generated)
	assert.Contains(t, content, "THIS IS AN AUTOGENERATED FILE")
	assert.Contains(t, content, "export class Submission extends ModelBase {")
	assert.Contains(t, content, "export class SubmissionRevision extends ModelBase {")
	assert.Contains(t, content, "autogenManagerModel(Profile, 'profile');")

	// Cross-model relations resolve to joined declarations.
	assert.Contains(t, content, "revision_of: Submission | null;")
	assert.Contains(t, content, "minecraft_version_max: MinecraftVersion | null;")
}
