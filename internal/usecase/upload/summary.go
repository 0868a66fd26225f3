package upload

import (
	"fmt"
	"strings"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
)

const _maxReportedFailures = 3

// Summarize composes the reply for a finished batch.
func (uc *UploadUseCase) Summarize(results []entity.UploadResult) string {
	return Summary(results, uc.settings.GalleryURL)
}

func Summary(results []entity.UploadResult, galleryURL string) string {
	var ok, failed []entity.UploadResult
	for _, r := range results {
		if r.Succeeded() {
			ok = append(ok, r)
		} else {
			failed = append(failed, r)
		}
	}

	switch {
	case len(results) == 0:
		return "❌ Tidak ada foto yang bisa diupload."
	case len(ok) == 0:
		return fmt.Sprintf("❌ Gagal upload: %s", failed[0].ErrorReason)
	case len(failed) == 0:
		return successText(len(ok), galleryURL)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *%d dari %d foto berhasil diupload*, %d gagal.\n\n", len(ok), len(results), len(failed))
	b.WriteString("Yang gagal:\n")
	for i, r := range failed {
		if i == _maxReportedFailures {
			fmt.Fprintf(&b, "• ...dan %d lainnya\n", len(failed)-_maxReportedFailures)

			break
		}
		fmt.Fprintf(&b, "• #%d: %s\n", r.SequenceIndex, r.ErrorReason)
	}
	b.WriteString("\nKirim ulang foto yang gagal lalu balas dengan !upload.")
	if galleryURL != "" {
		fmt.Fprintf(&b, "\n\n🔗 Lihat di: %s", galleryURL)
	}

	return b.String()
}

func successText(n int, galleryURL string) string {
	var b strings.Builder

	if n == 1 {
		b.WriteString("✅ *Foto berhasil diupload!*\n\n📸 Foto Anda sekarang ada di galeri kelas.")
	} else {
		fmt.Fprintf(&b, "✅ *%d foto berhasil diupload!*\n\n📸 Semua foto Anda sekarang ada di galeri kelas.", n)
	}

	if galleryURL != "" {
		fmt.Fprintf(&b, "\n\n🔗 Lihat di: %s", galleryURL)
	}

	return b.String()
}
