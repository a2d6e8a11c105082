package apperr

import (
	"log"

	"github.com/gin-gonic/gin"
)

// Enveloppe JSON commune à toutes les réponses :
//   succès : {status:"success", message?, data?}
//   échec  : {status:"failed"|"error", message}
// "failed" pour les erreurs métier (4xx), "error" pour les 5xx.

// Respond écrit l'enveloppe d'erreur et interrompt le handler
func Respond(c *gin.Context, err error) {
	appErr := From(err)
	status := "failed"
	if appErr.Status >= 500 {
		status = "error"
		// Les détails des 5xx ne sortent jamais vers le client
		log.Printf("❌ Erreur interne [%s %s]: %v", c.Request.Method, c.Request.URL.Path, appErr.Err)
	}
	c.AbortWithStatusJSON(appErr.Status, gin.H{
		"status":  status,
		"message": appErr.Message,
	})
}

// OK écrit l'enveloppe de succès
func OK(c *gin.Context, httpStatus int, message string, data interface{}) {
	body := gin.H{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(httpStatus, body)
}
