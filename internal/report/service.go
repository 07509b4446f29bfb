package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/signintech/gopdf"

	"clinic-similar-cases/internal/cases"
)

var errNoFont = errors.New("no usable font")

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	logger       zerolog.Logger
	fontPaths    []string
}

func NewService(tg TelegramClient, doctorChatID int64, logger zerolog.Logger) *Service {
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		logger:       logger,
		// DejaVuSans covers Cyrillic patient names. Alpine and Debian paths.
		fontPaths: []string{
			"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		},
	}
}

// SendSimilarCasesReport renders the analysis as a PDF and sends it to the
// doctor's chat. Without a font the summary goes out as plain messages.
func (s *Service) SendSimilarCasesReport(ctx context.Context, a *cases.Analysis) error {
	pdfBytes, err := s.renderPDF(a)
	if errors.Is(err, errNoFont) {
		s.logger.Warn().Err(err).Msg("pdf font missing, sending text summary")
		return s.sendText(ctx, Text(a))
	}
	if err != nil {
		return err
	}

	fileName := fmt.Sprintf("similar_cases_%s.pdf", a.GeneratedAt.Format("20060102_150405"))
	s.logger.Info().
		Int64("chat_id", s.doctorChatID).
		Int("cases", len(a.Cases)).
		Int("bytes", len(pdfBytes)).
		Msg("sending similar cases report")
	if err := s.tgClient.SendDocument(ctx, s.doctorChatID, pdfBytes, fileName); err != nil {
		s.logger.Error().Err(err).Msg("telegram document upload failed")
		return err
	}
	return nil
}

func (s *Service) sendText(ctx context.Context, text string) error {
	for i, chunk := range splitMessage(text, MaxMessageRunes) {
		if err := s.tgClient.SendMessage(ctx, s.doctorChatID, chunk); err != nil {
			return fmt.Errorf("send summary part %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Service) renderPDF(a *cases.Analysis) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("%w: %v", errNoFont, fontErr)
	}

	pdf.SetMargins(40, 40, 40, 40)
	pdf.SetXY(40, 40)
	for _, l := range Summary(a) {
		size, gap := 11.0, 14.0
		switch l.Kind {
		case LineTitle:
			size, gap = 20, 30
		case LineHeading:
			size, gap = 14, 18
			pdf.Br(6)
		case LineNote:
			size = 10
		}
		if err := pdf.SetFont("DejaVu", "", size); err != nil {
			return nil, err
		}

		wrapped, err := pdf.SplitText(l.Text, 515)
		if err != nil {
			wrapped = []string{l.Text}
		}
		for _, w := range wrapped {
			if pdf.GetY()+gap > 800 {
				pdf.AddPage()
				pdf.SetXY(40, 40)
			}
			pdf.SetX(40)
			if err := pdf.Cell(nil, w); err != nil {
				return nil, err
			}
			pdf.Br(gap)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
