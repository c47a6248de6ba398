// ABOUTME: Guild routing configuration store over the KV persistence layer
// ABOUTME: Command channel, command prefixes, and target user tags per guild

package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/store"
)

// Rule errors, surfaced typed to the admin command processor.
var (
	// ErrDuplicateRule means the prefix or tag is already configured.
	ErrDuplicateRule = errors.New("rule already exists")

	// ErrRuleNotFound means the prefix or tag is not configured.
	ErrRuleNotFound = errors.New("rule does not exist")
)

// schemaVersion gates a one-time wipe-and-reinit of the stored collections.
// Configuration is cheap to recreate, so there is no field-level migration.
const schemaVersion = "2"

// Logical KV keys. Each holds a JSON array of per-guild records.
const (
	keySchemaVersion   = "schema_version"
	keyCommandChannels = "command_channels"
	keyCommandPrefixes = "command_prefixes"
	keyTargetUserTags  = "target_user_tags"
)

type channelRecord struct {
	GuildID string `json:"guildId"`
	Name    string `json:"name"`
}

type prefixRecord struct {
	GuildID  string   `json:"guildId"`
	Prefixes []string `json:"prefixes"`
}

type tagRecord struct {
	GuildID string   `json:"guildId"`
	Tags    []string `json:"tags"`
}

// Store holds the per-guild routing configuration. Every write is a
// read-modify-write over a full collection key, so a single writer mutex
// serializes mutations. A per-guild lock would not be enough: two guilds
// mutating the same collection key would still lose updates.
type Store struct {
	mu     sync.Mutex
	kv     store.KV
	logger *slog.Logger
}

// NewStore creates a routing config store over kv. If the stored schema
// version does not match the running version, the store is wiped and
// reinitialized.
func NewStore(ctx context.Context, kv store.KV, logger *slog.Logger) (*Store, error) {
	s := &Store{
		kv:     kv,
		logger: logger.With("component", "routing"),
	}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrating routing store: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, keySchemaVersion)
	if err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return fmt.Errorf("reading schema version: %w", err)
	}

	var stored string
	if err == nil {
		if err := json.Unmarshal(raw, &stored); err != nil {
			return fmt.Errorf("parsing schema version: %w", err)
		}
	}

	if stored == schemaVersion {
		return nil
	}

	s.logger.Info("schema version changed, wiping store",
		"old_version", stored,
		"new_version", schemaVersion,
	)

	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("wiping store: %w", err)
	}

	version, _ := json.Marshal(schemaVersion)
	if err := s.kv.Set(ctx, keySchemaVersion, version); err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}
	return nil
}

// loadCollection reads a collection key into dst. A missing key leaves dst
// at its zero value.
func (s *Store) loadCollection(ctx context.Context, key string, dst any) error {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	return nil
}

func (s *Store) saveCollection(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// GetCommandChannel returns the command channel name set for the guild.
// The second return is false if no channel is set.
func (s *Store) GetCommandChannel(ctx context.Context, guildID string) (string, bool, error) {
	var records []channelRecord
	if err := s.loadCollection(ctx, keyCommandChannels, &records); err != nil {
		return "", false, err
	}
	for _, rec := range records {
		if rec.GuildID == guildID {
			return rec.Name, true, nil
		}
	}
	return "", false, nil
}

// SetCommandChannel sets or replaces the guild's command channel name.
func (s *Store) SetCommandChannel(ctx context.Context, guildID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []channelRecord
	if err := s.loadCollection(ctx, keyCommandChannels, &records); err != nil {
		return err
	}

	updated := false
	for i, rec := range records {
		if rec.GuildID == guildID {
			records[i].Name = name
			updated = true
			break
		}
	}
	if !updated {
		records = append(records, channelRecord{GuildID: guildID, Name: name})
	}

	if err := s.saveCollection(ctx, keyCommandChannels, records); err != nil {
		return err
	}
	s.logger.Info("command channel set", "guild_id", guildID, "channel", name)
	return nil
}

// ClearCommandChannel removes the guild's command channel. Idempotent.
func (s *Store) ClearCommandChannel(ctx context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []channelRecord
	if err := s.loadCollection(ctx, keyCommandChannels, &records); err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.GuildID != guildID {
			kept = append(kept, rec)
		}
	}

	if err := s.saveCollection(ctx, keyCommandChannels, kept); err != nil {
		return err
	}
	s.logger.Info("command channel cleared", "guild_id", guildID)
	return nil
}

// GetPrefixes returns the guild's command prefixes, empty if none.
func (s *Store) GetPrefixes(ctx context.Context, guildID string) ([]string, error) {
	var records []prefixRecord
	if err := s.loadCollection(ctx, keyCommandPrefixes, &records); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.GuildID == guildID {
			return append([]string(nil), rec.Prefixes...), nil
		}
	}
	return nil, nil
}

// AddPrefix adds a command prefix for the guild.
// Returns ErrDuplicateRule if the prefix is already configured.
func (s *Store) AddPrefix(ctx context.Context, guildID, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []prefixRecord
	if err := s.loadCollection(ctx, keyCommandPrefixes, &records); err != nil {
		return err
	}

	idx := -1
	for i, rec := range records {
		if rec.GuildID == guildID {
			idx = i
			break
		}
	}

	if idx >= 0 {
		for _, p := range records[idx].Prefixes {
			if p == prefix {
				return ErrDuplicateRule
			}
		}
		records[idx].Prefixes = append(records[idx].Prefixes, prefix)
	} else {
		records = append(records, prefixRecord{GuildID: guildID, Prefixes: []string{prefix}})
	}

	if err := s.saveCollection(ctx, keyCommandPrefixes, records); err != nil {
		return err
	}
	s.logger.Info("prefix added", "guild_id", guildID, "prefix", prefix)
	return nil
}

// RemovePrefix removes a command prefix for the guild.
// Returns ErrRuleNotFound if the prefix is not configured. The guild's
// record is retained even when its prefix set becomes empty, so "configured
// but empty" stays distinguishable from "never configured".
func (s *Store) RemovePrefix(ctx context.Context, guildID, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []prefixRecord
	if err := s.loadCollection(ctx, keyCommandPrefixes, &records); err != nil {
		return err
	}

	for i, rec := range records {
		if rec.GuildID != guildID {
			continue
		}
		for j, p := range rec.Prefixes {
			if p == prefix {
				records[i].Prefixes = append(rec.Prefixes[:j:j], rec.Prefixes[j+1:]...)
				if err := s.saveCollection(ctx, keyCommandPrefixes, records); err != nil {
					return err
				}
				s.logger.Info("prefix removed", "guild_id", guildID, "prefix", prefix)
				return nil
			}
		}
		return ErrRuleNotFound
	}
	return ErrRuleNotFound
}

// GetTargetTags returns the guild's target user tags, empty if none.
func (s *Store) GetTargetTags(ctx context.Context, guildID string) ([]string, error) {
	var records []tagRecord
	if err := s.loadCollection(ctx, keyTargetUserTags, &records); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.GuildID == guildID {
			return append([]string(nil), rec.Tags...), nil
		}
	}
	return nil, nil
}

// AddTag adds a target user tag for the guild.
// Returns ErrDuplicateRule if the tag is already configured.
func (s *Store) AddTag(ctx context.Context, guildID, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []tagRecord
	if err := s.loadCollection(ctx, keyTargetUserTags, &records); err != nil {
		return err
	}

	idx := -1
	for i, rec := range records {
		if rec.GuildID == guildID {
			idx = i
			break
		}
	}

	if idx >= 0 {
		for _, t := range records[idx].Tags {
			if t == tag {
				return ErrDuplicateRule
			}
		}
		records[idx].Tags = append(records[idx].Tags, tag)
	} else {
		records = append(records, tagRecord{GuildID: guildID, Tags: []string{tag}})
	}

	if err := s.saveCollection(ctx, keyTargetUserTags, records); err != nil {
		return err
	}
	s.logger.Info("target tag added", "guild_id", guildID, "tag", tag)
	return nil
}

// RemoveTag removes a target user tag for the guild.
// Returns ErrRuleNotFound if the tag is not configured. When the guild's
// tag set becomes empty, the guild's record is pruned entirely.
func (s *Store) RemoveTag(ctx context.Context, guildID, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []tagRecord
	if err := s.loadCollection(ctx, keyTargetUserTags, &records); err != nil {
		return err
	}

	for i, rec := range records {
		if rec.GuildID != guildID {
			continue
		}
		for j, t := range rec.Tags {
			if t == tag {
				remaining := append(rec.Tags[:j:j], rec.Tags[j+1:]...)
				if len(remaining) == 0 {
					records = append(records[:i:i], records[i+1:]...)
				} else {
					records[i].Tags = remaining
				}
				if err := s.saveCollection(ctx, keyTargetUserTags, records); err != nil {
					return err
				}
				s.logger.Info("target tag removed", "guild_id", guildID, "tag", tag)
				return nil
			}
		}
		return ErrRuleNotFound
	}
	return ErrRuleNotFound
}

// ClearTags removes the guild's tag record entirely. Idempotent.
func (s *Store) ClearTags(ctx context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []tagRecord
	if err := s.loadCollection(ctx, keyTargetUserTags, &records); err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.GuildID != guildID {
			kept = append(kept, rec)
		}
	}

	if err := s.saveCollection(ctx, keyTargetUserTags, kept); err != nil {
		return err
	}
	s.logger.Info("target tags cleared", "guild_id", guildID)
	return nil
}

// Snapshot returns the guild's resolved configuration in one read pass.
func (s *Store) Snapshot(ctx context.Context, guildID string) (Snapshot, error) {
	channel, _, err := s.GetCommandChannel(ctx, guildID)
	if err != nil {
		return Snapshot{}, err
	}
	prefixes, err := s.GetPrefixes(ctx, guildID)
	if err != nil {
		return Snapshot{}, err
	}
	tags, err := s.GetTargetTags(ctx, guildID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		CommandChannel: channel,
		Prefixes:       prefixes,
		Tags:           tags,
	}, nil
}
