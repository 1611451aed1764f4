package schema

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/uXmii/schemaflow/internal/logger"
	"github.com/uXmii/schemaflow/internal/logger/tag"
)

// Environments the curated schema is validated in.
const (
	EnvTraining = "TRAINING"
	EnvServing  = "SERVING"
)

var ErrFeatureNotFound = errors.New("schema: feature not found")

// Edit is a single curation step. Edits take and return the schema by
// value so ownership stays unambiguous across the edit sequence.
type Edit func(ctx context.Context, s Schema) (Schema, error)

// Apply runs the edits in order, threading the schema through each step.
// The first failing edit aborts the sequence.
func Apply(ctx context.Context, s Schema, edits ...Edit) (Schema, error) {
	var err error
	for _, edit := range edits {
		s, err = edit(ctx, s)
		if err != nil {
			return Schema{}, err
		}
	}
	return s, nil
}

// Curate applies the fixed curation edit list for the Census Income
// schema: restrict the age domain, register the TRAINING and SERVING
// environments, exclude the label from SERVING, and probe the optional
// features.
func Curate(ctx context.Context, s Schema) (Schema, error) {
	return Apply(ctx, s,
		SetIntDomain("age", 17, 90),
		AddEnvironments(EnvTraining, EnvServing),
		ExcludeFromEnvironment("label", EnvServing),
		ProbeFeatures("education", "workclass"),
	)
}

// SetIntDomain returns an edit that sets the [min, max] int domain of the
// named feature. Editing a feature that does not exist in the schema
// fails the edit.
func SetIntDomain(feature string, min, max int64) Edit {
	return func(ctx context.Context, s Schema) (Schema, error) {
		i := s.featureIndex(feature)
		if i < 0 {
			return Schema{}, fmt.Errorf("cannot set int domain of %q: %w", feature, ErrFeatureNotFound)
		}
		out := clone(s)
		out.Features[i].IntDomain = &IntDomain{Min: min, Max: max}
		logger.Info(ctx, "Restricted feature domain", tag.Feature(feature), "min", min, "max", max)
		return out, nil
	}
}

// AddEnvironments returns an edit that appends the given environments to
// the schema's default set. Environments already present are skipped, so
// re-applying the edit leaves the schema unchanged.
func AddEnvironments(envs ...string) Edit {
	return func(ctx context.Context, s Schema) (Schema, error) {
		out := clone(s)
		for _, env := range envs {
			if slices.Contains(out.DefaultEnvironments, env) {
				continue
			}
			out.DefaultEnvironments = append(out.DefaultEnvironments, env)
		}
		logger.Info(ctx, "Registered schema environments", "environments", envs)
		return out, nil
	}
}

// ExcludeFromEnvironment returns an edit that marks the named feature as
// excluded from the named environment. Excluding an already excluded
// feature is a no-op. Editing a missing feature fails the edit.
func ExcludeFromEnvironment(feature, env string) Edit {
	return func(ctx context.Context, s Schema) (Schema, error) {
		i := s.featureIndex(feature)
		if i < 0 {
			return Schema{}, fmt.Errorf("cannot exclude %q from %s: %w", feature, env, ErrFeatureNotFound)
		}
		out := clone(s)
		if !slices.Contains(out.Features[i].NotInEnvironment, env) {
			out.Features[i].NotInEnvironment = append(out.Features[i].NotInEnvironment, env)
		}
		logger.Info(ctx, "Excluded feature from environment", tag.Feature(feature), "environment", env)
		return out, nil
	}
}

// ProbeFeatures returns an edit that checks the named optional features
// for presence. Probing only logs; a missing feature never fails the
// edit sequence.
func ProbeFeatures(features ...string) Edit {
	return func(ctx context.Context, s Schema) (Schema, error) {
		for _, name := range features {
			if s.HasFeature(name) {
				logger.Info(ctx, "Optional feature present", tag.Feature(name))
			} else {
				logger.Info(ctx, "Optional feature not found, skipping", tag.Feature(name))
			}
		}
		return s, nil
	}
}

// clone deep-copies the schema so edits never alias the caller's value.
func clone(s Schema) Schema {
	out := Schema{
		DefaultEnvironments: slices.Clone(s.DefaultEnvironments),
		Features:            make([]Feature, len(s.Features)),
	}
	for i, f := range s.Features {
		c := f
		if f.IntDomain != nil {
			d := *f.IntDomain
			c.IntDomain = &d
		}
		if f.StringDomain != nil {
			c.StringDomain = &StringDomain{Values: slices.Clone(f.StringDomain.Values)}
		}
		c.NotInEnvironment = slices.Clone(f.NotInEnvironment)
		out.Features[i] = c
	}
	return out
}
