package webui

import (
	"testing"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/stretchr/testify/require"
)

func TestView_PreviewAndPlaceholder(t *testing.T) {
	v := NewView()
	require.True(t, v.Snapshot(false).ShowPlaceholder)

	v.ShowPreview("orig", "res")
	v.SetActions(true, true)

	snap := v.Snapshot(false)
	require.False(t, snap.ShowPlaceholder)
	require.Equal(t, "/blobs/orig", snap.OriginalSrc)
	require.Equal(t, "/blobs/res", snap.ResultSrc)
	require.True(t, snap.ResetEnabled)
	require.True(t, snap.DownloadEnabled)

	v.ShowPlaceholder()
	snap = v.Snapshot(false)
	require.True(t, snap.ShowPlaceholder)
	require.Empty(t, snap.OriginalSrc)
	require.Empty(t, snap.ResultSrc)
}

func TestView_DrainClearsOneShotEffects(t *testing.T) {
	v := NewView()
	v.SetActiveMode(model.ModePrecision)
	v.SetModeLabel("Precision Mode")
	v.SetDragOver(true)
	v.OpenFilePicker()
	v.ClearFileInput()
	v.ScrollToWorkspace()
	v.TriggerDownload("res", "desilhouette-precision.png")
	v.Alert(model.MsgNotImage)
	v.Alert("")

	snap := v.Snapshot(true)
	require.Equal(t, model.ModePrecision, snap.Mode)
	require.Equal(t, "Precision Mode", snap.ModeLabel)
	require.True(t, snap.OpenFilePicker)
	require.True(t, snap.ClearFileInput)
	require.Equal(t, model.ScrollTargetWorkspace, snap.ScrollTo)
	require.Equal(t, &DownloadLink{URL: "/blobs/res", Filename: "desilhouette-precision.png"}, snap.Download)
	require.Equal(t, []string{model.MsgNotImage, model.MsgSomethingWrong}, snap.Alerts)

	after := v.Snapshot(true)
	require.Empty(t, after.Alerts)
	require.False(t, after.OpenFilePicker)
	require.False(t, after.ClearFileInput)
	require.Empty(t, after.ScrollTo)
	require.Nil(t, after.Download)

	// постоянные поля остаются
	require.Equal(t, model.ModePrecision, after.Mode)
	require.True(t, after.DragOver)
}

func TestView_SnapshotWithoutDrainKeepsAlerts(t *testing.T) {
	v := NewView()
	v.Alert(model.MsgSelectImage)

	first := v.Snapshot(false)
	first.Alerts[0] = "changed"

	require.Equal(t, []string{model.MsgSelectImage}, v.Snapshot(false).Alerts)
}
