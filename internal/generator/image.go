// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"context"
	"fmt"
	"strings"

	"oagen-cli/internal/container"
)

const (
	// DefaultImage is the OpenAPI generator image run by default.
	DefaultImage = "openapitools/openapi-generator-cli:v4.2.2"

	// PullMissing pulls the image only when it is not present locally.
	PullMissing PullPolicy = "missing"
	// PullAlways pulls the image before every run.
	PullAlways PullPolicy = "always"
	// PullNever never pulls; a missing image is an error.
	PullNever PullPolicy = "never"
)

// PullPolicy controls when the generator image is pulled.
type PullPolicy string

// ParsePullPolicy converts a configuration value into a PullPolicy.
// The empty string selects PullMissing.
func ParsePullPolicy(s string) (PullPolicy, error) {
	switch p := PullPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PullMissing, nil
	case PullMissing, PullAlways, PullNever:
		return p, nil
	default:
		return "", fmt.Errorf("unknown pull policy %q (expected missing, always or never)", s)
	}
}

// EnsureImage makes sure the generator image is available to the engine,
// following the workflow's pull policy. Under PullMissing the pull confirmer,
// when set, must agree before a missing image is pulled.
func (w *Workflow) EnsureImage(ctx context.Context) error {
	if w.pull == PullAlways {
		return w.pullImage(ctx)
	}

	exists, err := w.engine.ImageExists(ctx, w.image)
	if err != nil {
		return fmt.Errorf("check image %s: %w", w.image, err)
	}
	if exists {
		logger().Debug("image present", "image", w.image, "engine", w.engine.Name())
		return nil
	}
	if w.pull == PullNever {
		return fmt.Errorf("%w: %s (pull policy is %s)", ErrImageMissing, w.image, PullNever)
	}

	if w.pullConfirm != nil {
		ok, err := w.pullConfirm.Confirm(ctx, fmt.Sprintf("Image %s is not present locally. Pull it now?", w.image))
		if err != nil {
			return err
		}
		if !ok {
			return ErrPullDeclined
		}
	}
	return w.pullImage(ctx)
}

func (w *Workflow) pullImage(ctx context.Context) error {
	logger().Info("pulling image", "image", w.image, "engine", w.engine.Name())
	return w.engine.Pull(ctx, container.PullOptions{
		Image:  w.image,
		Stdout: w.pullOutput,
		Stderr: w.pullOutput,
	})
}
