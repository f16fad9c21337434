package store

import (
	"fmt"
	"strings"
)

// Entity names a table with editable landing-page content.
type Entity string

const (
	EntityProduct Entity = "products"
	EntityCourse  Entity = "courses"
)

// ParseEntity accepts singular or plural table names.
func ParseEntity(raw string) (Entity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "product", "products":
		return EntityProduct, nil
	case "course", "courses":
		return EntityCourse, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntity, raw)
}

type entitySchema struct {
	table      string
	plain      []string
	jsonFields []string
	aliases    map[string]string
}

var formAliases = map[string]string{
	"benefits_list": "benefits",
	"faq_items":     "faq",
}

var schemas = map[Entity]entitySchema{
	EntityProduct: {
		table: "products",
		plain: []string{
			"title", "slug", "description", "meta_title", "meta_description",
			"banner_text", "banner_image", "detailed_description", "promo_video_url",
			"usp", "customer_avatars", "guarantee_text", "limited_offer",
			"social_proof", "author_bio", "related_products", "download_link",
			"cta_primary_text", "cta_secondary_text", "seo_keywords",
		},
		jsonFields: []string{
			"benefits", "faq", "testimonials", "features", "technical_specs",
			"gallery_images", "pricing_tiers", "before_after", "product_comparison",
		},
		aliases: formAliases,
	},
	EntityCourse: {
		table: "courses",
		plain: []string{
			"title", "slug", "description", "meta_title", "meta_description",
			"banner_text", "banner_image", "detailed_description", "promo_video_url",
			"related_courses", "cta_primary_text", "cta_secondary_text", "seo_keywords",
		},
		jsonFields: []string{
			"benefits", "faq", "testimonials", "features", "gallery_images", "pricing_tiers",
		},
		aliases: formAliases,
	},
}

func schemaFor(entity Entity) (entitySchema, error) {
	schema, ok := schemas[entity]
	if !ok {
		return entitySchema{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	return schema, nil
}

// StructuredColumns lists the JSON columns of entity.
func StructuredColumns(entity Entity) []string {
	schema, ok := schemas[entity]
	if !ok {
		return nil
	}
	return append([]string(nil), schema.jsonFields...)
}

func (s entitySchema) columns() []string {
	out := make([]string, 0, len(s.plain)+len(s.jsonFields))
	out = append(out, s.plain...)
	return append(out, s.jsonFields...)
}

func (s entitySchema) structured(column string) bool {
	for _, name := range s.jsonFields {
		if name == column {
			return true
		}
	}
	return false
}

// resolve keeps the values naming a column, mapping aliases onto their
// column unless the canonical name is also present.
func (s entitySchema) resolve(values map[string]string) map[string]string {
	known := make(map[string]struct{}, len(s.plain)+len(s.jsonFields))
	for _, column := range s.columns() {
		known[column] = struct{}{}
	}
	out := make(map[string]string, len(values))
	for name, value := range values {
		if _, ok := known[name]; ok {
			out[name] = value
		}
	}
	for alias, column := range s.aliases {
		value, ok := values[alias]
		if !ok {
			continue
		}
		if _, taken := out[column]; taken {
			continue
		}
		if _, ok := known[column]; ok {
			out[column] = value
		}
	}
	return out
}
