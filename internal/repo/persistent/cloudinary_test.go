package persistent

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type fakeUploader struct {
	uploadResp  *uploader.UploadResult
	uploadErr   error
	destroyResp *uploader.DestroyResult

	gotFolder string
	gotBody   string
	destroyed []string
}

func (f *fakeUploader) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	if r, ok := file.(io.Reader); ok {
		b, _ := io.ReadAll(r)
		f.gotBody = string(b)
	}
	f.gotFolder = params.Folder

	return f.uploadResp, f.uploadErr
}

func (f *fakeUploader) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = append(f.destroyed, params.PublicID)

	return f.destroyResp, nil
}

func TestCloudinaryImageSink_Upload(t *testing.T) {
	api := &fakeUploader{uploadResp: &uploader.UploadResult{
		PublicID:  "kelas/abc",
		SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/kelas/abc.jpg",
		Bytes:     2048,
	}}
	sink := &CloudinaryImageSink{api: api}

	remote, err := sink.Upload(context.Background(), strings.NewReader("jpeg"), 4, "kelas")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if remote.RemoteID != "kelas/abc" || remote.ByteSize != 2048 || !strings.HasPrefix(remote.URL, "https://") {
		t.Fatalf("remote = %+v", remote)
	}
	if api.gotFolder != "kelas" || api.gotBody != "jpeg" {
		t.Fatalf("folder = %q body = %q", api.gotFolder, api.gotBody)
	}
}

func TestCloudinaryImageSink_UploadAPIError(t *testing.T) {
	resp := &uploader.UploadResult{}
	resp.Error.Message = "Invalid image file"
	sink := &CloudinaryImageSink{api: &fakeUploader{uploadResp: resp}}

	_, err := sink.Upload(context.Background(), strings.NewReader("x"), 1, "kelas")
	if err == nil || !strings.Contains(err.Error(), "Invalid image file") {
		t.Fatalf("err = %v", err)
	}
}

func TestCloudinaryImageSink_UploadTransportError(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	sink := &CloudinaryImageSink{api: &fakeUploader{uploadErr: cause}}

	_, err := sink.Upload(context.Background(), strings.NewReader("x"), 1, "kelas")
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v", err)
	}
}

func TestCloudinaryImageSink_DeleteIsIdempotent(t *testing.T) {
	api := &fakeUploader{destroyResp: &uploader.DestroyResult{Result: "not found"}}
	sink := &CloudinaryImageSink{api: api}

	for range 2 {
		if err := sink.Delete(context.Background(), "kelas/abc"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}
	if len(api.destroyed) != 2 {
		t.Fatalf("destroyed = %v", api.destroyed)
	}
}
