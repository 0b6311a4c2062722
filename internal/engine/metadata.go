package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Metadata is the ERC-721 style JSON document behind TokenURI.
type Metadata struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Image       string              `json:"image,omitempty"`
	Attributes  []MetadataAttribute `json:"attributes"`
}

type MetadataAttribute struct {
	TraitType   string `json:"trait_type,omitempty"`
	DisplayType string `json:"display_type,omitempty"`
	Value       any    `json:"value"`
}

const metadataURIPrefix = "data:application/json;base64,"

func (s *Service) TokenMetadata(ctx context.Context, tokenID int64) (*Metadata, error) {
	attrs, err := s.TokenAttributes(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	m := &Metadata{
		Name:        fmt.Sprintf("Aetherium Shard #%d", attrs.ID),
		Description: "A living Chrono-Forge shard. Energize it daily, evolve it, and forge it into higher generations.",
		Attributes: []MetadataAttribute{
			{TraitType: "Element", Value: attrs.CoreElement.String()},
			{TraitType: "Generation", Value: attrs.Generation.String()},
			{TraitType: "Energy", DisplayType: "number", Value: attrs.EnergyLevel},
			{TraitType: "Purity", DisplayType: "boost_percentage", Value: attrs.Purity},
			{TraitType: "Streak", DisplayType: "number", Value: attrs.CurrentStreak},
			{TraitType: "Evolved", Value: attrs.Evolved},
			{TraitType: "Born", DisplayType: "date", Value: attrs.CreationTime.Unix()},
		},
	}
	for _, trait := range attrs.InfusedTraits {
		m.Attributes = append(m.Attributes, MetadataAttribute{TraitType: "Infusion", Value: trait})
	}
	if s.imageBase != "" {
		m.Image = fmt.Sprintf("%s/%s-gen%d.png", strings.TrimRight(s.imageBase, "/"), strings.ToLower(attrs.CoreElement.String()), int(attrs.Generation)+1)
	}
	return m, nil
}

// TokenURI returns the metadata as a base64 JSON data URI.
func (s *Service) TokenURI(ctx context.Context, tokenID int64) (string, error) {
	m, err := s.TokenMetadata(ctx, tokenID)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return metadataURIPrefix + base64.StdEncoding.EncodeToString(b), nil
}

// DecodeTokenURI reverses TokenURI.
func DecodeTokenURI(uri string) (*Metadata, error) {
	raw, ok := strings.CutPrefix(uri, metadataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("unsupported token uri scheme")
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode token uri: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse token metadata: %w", err)
	}
	return &m, nil
}
