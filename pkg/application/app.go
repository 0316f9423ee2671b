// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sessionforge/starkdeploy/pkg/config"
	"github.com/sessionforge/starkdeploy/pkg/constants"
	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/sessionforge/starkdeploy/pkg/prompts"
	"go.uber.org/zap"
)

type Starkdeploy struct {
	Log     *zap.SugaredLogger
	baseDir string
	Conf    *config.Config
	Prompt  prompts.Prompter

	// ConfigPath is set from the --config flag before any command runs
	ConfigPath string
}

func New() *Starkdeploy {
	return &Starkdeploy{}
}

func (app *Starkdeploy) Setup(baseDir string, log *zap.SugaredLogger, conf *config.Config, prompt prompts.Prompter) {
	app.baseDir = baseDir
	app.Log = log
	app.Conf = conf
	app.Prompt = prompt
}

func (app *Starkdeploy) GetBaseDir() string {
	return app.baseDir
}

// LoadConfig loads the deployment config on first use and caches it.
func (app *Starkdeploy) LoadConfig() (*config.Config, error) {
	if app.Conf != nil {
		return app.Conf, nil
	}
	path := app.ConfigPath
	if path == "" {
		path = constants.DefaultConfigName
	}
	conf, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	app.Conf = conf
	return conf, nil
}

func (app *Starkdeploy) GetLogDir() string {
	return filepath.Join(app.baseDir, constants.LogDir)
}

func (app *Starkdeploy) GetRecordsDir() string {
	return filepath.Join(app.baseDir, constants.RecordsDirName)
}

func (app *Starkdeploy) GetRecordPath(record *models.DeploymentRecord) string {
	name := models.RecordFileName(record.Network, record.ContractType, time.Unix(record.Timestamp, 0))
	return filepath.Join(app.GetRecordsDir(), name)
}

// WriteDeploymentRecord persists a deployment record under the records
// dir and returns the file path it was written to.
func (app *Starkdeploy) WriteDeploymentRecord(record *models.DeploymentRecord) (string, error) {
	if err := os.MkdirAll(app.GetRecordsDir(), constants.DefaultPerms755); err != nil {
		return "", err
	}
	recordBytes, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return "", err
	}
	recordPath := app.GetRecordPath(record)
	if err := os.WriteFile(recordPath, recordBytes, constants.WriteReadReadPerms); err != nil {
		return "", err
	}
	return recordPath, nil
}

// UpdateDeploymentRecord rewrites an existing record in place, used to
// append post-deployment operations after wiring calls.
func (app *Starkdeploy) UpdateDeploymentRecord(record *models.DeploymentRecord) error {
	recordBytes, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(app.GetRecordPath(record), recordBytes, constants.WriteReadReadPerms)
}

// LoadDeploymentRecords reads every record for the given network,
// oldest first. A missing records dir is an empty history, not an
// error.
func (app *Starkdeploy) LoadDeploymentRecords(network string) ([]models.DeploymentRecord, error) {
	pattern := filepath.Join(app.GetRecordsDir(), fmt.Sprintf("deployment_%s_*.json", network))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	records := make([]models.DeploymentRecord, 0, len(matches))
	for _, recordPath := range matches {
		recordBytes, err := os.ReadFile(recordPath)
		if err != nil {
			return nil, err
		}
		var record models.DeploymentRecord
		if err := json.Unmarshal(recordBytes, &record); err != nil {
			return nil, fmt.Errorf("failed to parse deployment record %s: %w", recordPath, err)
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}

// LatestRecords returns the most recent record per contract type for
// the given network.
func (app *Starkdeploy) LatestRecords(network string) (map[models.ContractType]models.DeploymentRecord, error) {
	records, err := app.LoadDeploymentRecords(network)
	if err != nil {
		return nil, err
	}
	latest := map[models.ContractType]models.DeploymentRecord{}
	for _, record := range records {
		latest[record.ContractType] = record
	}
	return latest, nil
}
