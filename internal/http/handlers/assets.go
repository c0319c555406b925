package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/pkg/zip"
)

type assetResponse struct {
	ID              string         `json:"id"`
	Kind            string         `json:"kind"`
	StorageKey      string         `json:"storage_key"`
	URL             string         `json:"url"`
	MIME            string         `json:"mime"`
	Bytes           int64          `json:"bytes"`
	Width           int            `json:"width,omitempty"`
	Height          int            `json:"height,omitempty"`
	DurationSeconds float64        `json:"duration_seconds,omitempty"`
	SegmentIndex    int            `json:"segment_index"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

func (a *App) assetToResponse(asset *domain.Asset) assetResponse {
	return assetResponse{
		ID:              asset.ID,
		Kind:            string(asset.Kind),
		StorageKey:      asset.StorageKey,
		URL:             a.assetURL(asset.StorageKey),
		MIME:            asset.MIME,
		Bytes:           asset.Bytes,
		Width:           asset.Width,
		Height:          asset.Height,
		DurationSeconds: asset.DurationSeconds,
		SegmentIndex:    asset.SegmentIndex,
		Metadata:        asset.Metadata,
	}
}

func (a *App) assetURL(storageKey string) string {
	if storageKey == "" {
		return ""
	}
	if strings.HasPrefix(storageKey, "http://") || strings.HasPrefix(storageKey, "https://") {
		return storageKey
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(a.StorageBaseURL, "/"), strings.TrimLeft(storageKey, "/"))
}

// ProjectAssetsList returns every artifact of one project in segment order.
func (a *App) ProjectAssetsList(w http.ResponseWriter, r *http.Request) {
	deviceID := a.currentDeviceID(r)
	if deviceID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing device context")
		return
	}

	project, err := a.loadProjectForDevice(r.Context(), chi.URLParam(r, "id"), deviceID)
	if err != nil {
		a.projectError(w, err)
		return
	}

	assets, err := a.Assets.ListByProject(r.Context(), project.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}
	items := make([]assetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, a.assetToResponse(&assets[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// AssetDownload streams the stored bytes of one asset.
func (a *App) AssetDownload(w http.ResponseWriter, r *http.Request) {
	deviceID := a.currentDeviceID(r)
	if deviceID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing device context")
		return
	}

	asset, ownerDevice, err := a.Assets.GetByIDWithDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "asset not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load asset")
		return
	}
	if ownerDevice != deviceID {
		a.error(w, http.StatusNotFound, "not_found", "asset not found")
		return
	}

	data, err := a.Store.Read(r.Context(), asset.StorageKey)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "asset bytes not available")
		return
	}
	mime := asset.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(asset.StorageKey)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ProjectExport bundles every stored artifact of the project into a zip.
func (a *App) ProjectExport(w http.ResponseWriter, r *http.Request) {
	deviceID := a.currentDeviceID(r)
	if deviceID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing device context")
		return
	}

	project, err := a.loadProjectForDevice(r.Context(), chi.URLParam(r, "id"), deviceID)
	if err != nil {
		a.projectError(w, err)
		return
	}

	assets, err := a.Assets.ListByProject(r.Context(), project.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}

	var bundle []zip.Asset
	for _, asset := range assets {
		data, err := a.Store.Read(r.Context(), asset.StorageKey)
		if err != nil {
			continue
		}
		bundle = append(bundle, zip.Asset{
			Filename: path.Base(asset.StorageKey),
			MIME:     asset.MIME,
			Data:     data,
		})
	}
	if len(bundle) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no exportable assets")
		return
	}

	archive := zip.ArchiveAssets(bundle)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.ID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
