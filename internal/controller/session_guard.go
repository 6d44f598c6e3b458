package controller

import (
	"errors"
	"io"

	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// sessionGuard authenticates the session token and rejects sessions that
// were deleted or have expired since the token was issued.
func sessionGuard(issuer *serverutils.SessionTokenIssuer, sessions service.ISessionService) []fiber.Handler {
	return []fiber.Handler{
		serverutils.SessionMiddleware(issuer),
		func(ctx *fiber.Ctx) error {
			sessionId, _ := serverutils.SessionID(ctx)
			if err := sessions.Require(ctx.Context(), sessionId); err != nil {
				if errors.Is(err, service.ErrSessionNotFound) {
					return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Session expired"))
				}
				return err
			}
			return ctx.Next()
		},
	}
}

func mustSessionID(ctx *fiber.Ctx) uuid.UUID {
	id, _ := serverutils.SessionID(ctx)
	return id
}

func paramUUID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, serverutils.BadRequest("Invalid "+name, err)
	}
	return id, nil
}

var errMissingFile = errors.New("missing file")

// readUpload loads the multipart "file" field into an upload request.
func readUpload(ctx *fiber.Ctx) (*dto.UploadMaterialRequest, error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, errMissingFile
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &dto.UploadMaterialRequest{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}
