package whatsapp

import (
	"errors"
	"fmt"

	"github.com/sebelasdpib2/photo-bot/pkg/types/errs"
)

const (
	textInternalError = "❌ Terjadi error. Coba lagi nanti."

	textMissingQuoted = "❌ Balas pesan foto dengan \"!upload\"!\n\nContoh:\n1. Kirim foto\n2. Balas foto dengan: !upload"
	textVideo         = "❌ Video belum bisa diupload. Kirim sebagai foto, lalu balas dengan: !upload"
	textUnsupported   = "❌ Pesan yang dibales bukan foto!\n\nKirim foto dulu, terus balas dengan: !upload"
	textAlbumNotFound = "❌ Foto dari album ini tidak ditemukan. Bot hanya mengingat foto yang dikirim saat bot online.\n\nKirim ulang fotonya, lalu balas salah satu foto dengan: !upload"
)

// Texts carries the deployment-specific parts of the bot replies.
type Texts struct {
	BotName    string
	WebsiteURL string
}

func (t Texts) help() string {
	return fmt.Sprintf(`📸 *Perintah %s* 📸

🔹 *!upload* - Upload foto ke galeri website
   Balas pesan foto atau album dengan "!upload"

🔹 *!bantuan* atau *!help* - Tampilkan menu ini

🔹 *!info* - Info tentang bot ini

Contoh:
1. Kirim foto (boleh beberapa sekaligus)
2. Balas dengan pesan "!upload"
3. Foto akan otomatis terupload ke galeri kelas

📌 Pastikan kualitas foto bagus!`, t.BotName)
}

func (t Texts) info() string {
	text := fmt.Sprintf("ℹ️ *Tentang Bot Ini*\n\n%s\nUntuk upload dan dokumentasi kenangan kelas secara otomatis.", t.BotName)
	if t.WebsiteURL != "" {
		text += "\n\nWebsite: " + t.WebsiteURL
	}

	return text + "\n\nDikembangkan dengan cinta untuk kelas tercinta 💜"
}

func unknownCommand(cmd string) string {
	return fmt.Sprintf("❓ Command \"%s\" tidak diketahui.\n\nKetik: *!help* untuk melihat daftar command", cmd)
}

func progress(n int) string {
	if n == 1 {
		return "⏳ Sedang upload foto..."
	}

	return fmt.Sprintf("⏳ Sedang upload %d foto...", n)
}

// resolutionError maps a resolver failure to the instruction shown to the user.
func resolutionError(err error) string {
	switch {
	case errors.Is(err, errs.ErrMissingQuotedMessage):
		return textMissingQuoted
	case errors.Is(err, errs.ErrVideoNotSupported):
		return textVideo
	case errors.Is(err, errs.ErrAlbumTargetsNotFound):
		return textAlbumNotFound
	case errors.Is(err, errs.ErrUnsupportedMedia):
		return textUnsupported
	default:
		return textInternalError
	}
}
