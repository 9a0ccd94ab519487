package main

import (
	"io"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"hypertodo/pkg/config"
)

func TestTodoCmd_MissingDatabaseURL(t *testing.T) {
	RegisterTestingT(t)
	t.Setenv("DATABASE_URL", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"todo"})
	cmd.SetErr(io.Discard)

	err := cmd.Execute()

	Expect(config.IsConfigError(err)).To(BeTrue())
}

func TestLoadConfig_PortFlagWins(t *testing.T) {
	RegisterTestingT(t)
	t.Setenv("PORT", "4000")

	cmd := newTodoCmd()
	Expect(cmd.Flags().Set("port", "5000")).To(Succeed())

	cfg, err := loadConfig(cmd)

	Expect(err).To(BeNil())
	Expect(cfg.Port).To(Equal(5000))
}

func TestLoadConfig_EnvWithoutFlag(t *testing.T) {
	RegisterTestingT(t)
	t.Setenv("PORT", "4000")

	cfg, err := loadConfig(newTodoCmd())

	Expect(err).To(BeNil())
	Expect(cfg.Port).To(Equal(4000))
}

func TestMigrateCmd_SQLiteFile(t *testing.T) {
	RegisterTestingT(t)
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(t.TempDir(), "todos.db"))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate"})

	Expect(cmd.Execute()).To(Succeed())

	// second run finds nothing to apply
	cmd = newRootCmd()
	cmd.SetArgs([]string{"migrate"})

	Expect(cmd.Execute()).To(Succeed())
}
