package contagiongo

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// LoadEngineConfig parses a TOML file into an EngineConfig and validates
// the result.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return EngineConfig{}, errors.Wrapf(err, "decoding engine config at %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, errors.Wrap(err, "validating engine config")
	}
	return cfg, nil
}

// Validate checks that every tunable is in a range the kernel can act on.
func (cfg EngineConfig) Validate() error {
	if cfg.EventShardCount <= 0 {
		return errors.Errorf(InvalidIntParameterError, "event_shard_count", cfg.EventShardCount, "must be positive")
	}
	if cfg.AgentShardCount <= 0 {
		return errors.Errorf(InvalidIntParameterError, "agent_shard_count", cfg.AgentShardCount, "must be positive")
	}
	if cfg.DeletionBatchSize <= 0 {
		return errors.Errorf(InvalidIntParameterError, "deletion_batch_size", cfg.DeletionBatchSize, "must be positive")
	}
	if cfg.NumGlobalDummies <= 0 {
		return errors.Errorf(InvalidIntParameterError, "num_global_dummies", cfg.NumGlobalDummies, "must be positive")
	}
	if cfg.Parallel && cfg.NumWorkers <= 0 {
		return errors.Errorf(InvalidIntParameterError, "num_workers", cfg.NumWorkers, "must be positive when parallel is enabled")
	}
	return nil
}
