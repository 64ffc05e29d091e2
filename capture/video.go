package capture

import (
	"context"
	"time"

	"github.com/somnia-sleep/somnia/internal/models"
)

// Video drives the camera preview. No footage is stored; the artifact only
// records that the camera ran and for how long.
type Video struct {
	permission PermissionFunc
	handles    *registry
}

// NewVideo returns a video adapter. A nil permission grants access.
func NewVideo(permission PermissionFunc, now func() time.Time) *Video {
	if permission == nil {
		permission = Grant
	}

	return &Video{
		permission: permission,
		handles:    newRegistry(now),
	}
}

func (v *Video) Modality() models.Modality {
	return models.Video
}

func (v *Video) RequestPermission(ctx context.Context) bool {
	return v.permission(ctx, models.Video)
}

func (v *Video) StartCapture(_ context.Context) (*Handle, error) {
	return v.handles.open(models.Video), nil
}

func (v *Video) StopCapture(_ context.Context, h *Handle) (*Artifact, error) {
	d, err := v.handles.close(h)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Modality: models.Video,
		Duration: d,
	}, nil
}
