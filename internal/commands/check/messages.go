package checkcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-bookcheck/internal/catalog"
	"github.com/goliatone/go-bookcheck/internal/lint"
)

const (
	checkDirectoryMessageType = "bookcheck.check.directory"
	indexDirectoryMessageType = "bookcheck.catalog.index_directory"
)

// CheckResult is handed to CheckDirectoryCommand.ResultCallback.
type CheckResult struct {
	Report *lint.Report
	// Run is set when the report was recorded.
	Run *catalog.Run
	// Failed applies the command's FailOn threshold to Report.
	Failed bool
}

// IndexResult is handed to IndexDirectoryCommand.ResultCallback.
type IndexResult struct {
	Pages int
	Sync  catalog.SyncResult
}

// CheckDirectoryCommand lints every page under Directory.
type CheckDirectoryCommand struct {
	// Directory is relative to the content root; "." checks the whole tree.
	Directory string `json:"directory"`
	// FailOn is error, warning, info or never. Empty means error.
	FailOn string `json:"fail_on,omitempty"`
	// Record stores the report in the run history.
	Record bool `json:"record,omitempty"`

	ResultCallback func(CheckResult) `json:"-"`
}

// Type implements command.Message.
func (CheckDirectoryCommand) Type() string { return checkDirectoryMessageType }

// Validate ensures the directory and threshold are usable before handlers execute.
func (cmd CheckDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(directoryRule(checkDirectoryMessageType))),
		validation.Field(&cmd.FailOn, validation.By(func(value any) error {
			if _, err := lint.ParseFailOn(value.(string)); err != nil {
				return validation.NewError(checkDirectoryMessageType+".fail_on_invalid", "fail_on must be error, warning, info or never")
			}
			return nil
		})),
	)
}

// IndexDirectoryCommand mirrors the pages under Directory into the catalog.
type IndexDirectoryCommand struct {
	Directory string `json:"directory"`

	ResultCallback func(IndexResult) `json:"-"`
}

// Type implements command.Message.
func (IndexDirectoryCommand) Type() string { return indexDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd IndexDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(directoryRule(indexDirectoryMessageType))),
	)
}

func directoryRule(messageType string) validation.RuleFunc {
	return func(value any) error {
		dir := strings.TrimSpace(value.(string))
		if dir == "" {
			return validation.NewError(messageType+".directory_required", "directory is required")
		}
		for _, segment := range strings.Split(strings.ReplaceAll(dir, "\\", "/"), "/") {
			if segment == ".." {
				return validation.NewError(messageType+".directory_escapes_root", "directory must stay inside the content root")
			}
		}
		return nil
	}
}
