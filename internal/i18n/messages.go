package i18n

// Message keys
const (
	MsgCreated          = "created"
	MsgUpdated          = "updated"
	MsgDeleted          = "deleted"
	MsgFailed           = "failed"
	MsgLoggedIn         = "logged_in"
	MsgLoggedOut        = "logged_out"
	MsgLoginRequired    = "login_required"
	MsgSessionExpired   = "session_expired"
	MsgValidationFailed = "validation_failed"
	MsgPrintBlocked     = "print_blocked"
	MsgDocumentSaved    = "document_saved"
	MsgPreviewReady     = "preview_ready"
	MsgInvoiceSent      = "invoice_sent"
	MsgPartialData      = "partial_data"
	MsgNoData           = "no_data"
	MsgDeleteConfirm    = "delete_confirm"
	MsgDeleteCancelled  = "delete_cancelled"
	MsgRegistered       = "registered"
	MsgResendBlocked    = "resend_blocked"
	MsgBrowserBlocked   = "browser_blocked"

	MsgInvalidPersonName   = "validation.personname"
	MsgInvalidPhone        = "validation.phone"
	MsgInvalidAcademicYear = "validation.academicyear"
)

// Resource nouns used in notifications
const (
	NounStudent  = "noun.student"
	NounClass    = "noun.class"
	NounLevel    = "noun.level"
	NounFamily   = "noun.family"
	NounParent   = "noun.parent"
	NounFee      = "noun.fee"
	NounPayment  = "noun.payment"
	NounInvoice  = "noun.invoice"
	NounDocument = "noun.document"
	NounGrade    = "noun.grade"
	NounSubject  = "noun.subject"
)

var messages = map[string]map[string]string{
	"fr": {
		MsgCreated:          "{0} créé(e) avec succès",
		MsgUpdated:          "{0} mis(e) à jour avec succès",
		MsgDeleted:          "{0} supprimé(e) avec succès",
		MsgFailed:           "Échec : {0}",
		MsgLoggedIn:         "Connecté en tant que {0}",
		MsgLoggedOut:        "Déconnecté",
		MsgLoginRequired:    "Veuillez vous connecter : school-admin login",
		MsgSessionExpired:   "Session expirée, veuillez vous reconnecter : school-admin login",
		MsgValidationFailed: "Le formulaire contient des erreurs",
		MsgPrintBlocked:     "Impression impossible dans cet environnement, document enregistré : {0}",
		MsgDocumentSaved:    "Document enregistré : {0}",
		MsgPreviewReady:     "Aperçu disponible : {0}",
		MsgInvoiceSent:      "Facture {0} envoyée à {1}",
		MsgPartialData:      "Données partielles : {0}",
		MsgNoData:           "Aucune donnée",
		MsgDeleteConfirm:    "Supprimer {0} n° {1} ? (o/N) : ",
		MsgDeleteCancelled:  "Suppression annulée",
		MsgRegistered:       "Inscription confirmée : {0}",
		MsgResendBlocked:    "Facture {0} déjà envoyée, nouvel envoi possible dans {1} (ou --force)",
		MsgBrowserBlocked:   "Impossible d'ouvrir le navigateur, ouvrez {0} manuellement",

		NounStudent:  "Élève",
		NounClass:    "Classe",
		NounLevel:    "Niveau",
		NounFamily:   "Famille",
		NounParent:   "Parent",
		NounFee:      "Frais",
		NounPayment:  "Paiement",
		NounInvoice:  "Facture",
		NounDocument: "Document",
		NounGrade:    "Note",
		NounSubject:  "Matière",

		MsgInvalidPersonName:   "{0} ne doit contenir que des lettres, espaces, apostrophes ou tirets",
		MsgInvalidPhone:        "{0} doit être un numéro de téléphone valide",
		MsgInvalidAcademicYear: "{0} doit être une année scolaire au format AAAA-AAAA",
	},
	"en": {
		MsgCreated:          "{0} created successfully",
		MsgUpdated:          "{0} updated successfully",
		MsgDeleted:          "{0} deleted successfully",
		MsgFailed:           "Failed: {0}",
		MsgLoggedIn:         "Logged in as {0}",
		MsgLoggedOut:        "Logged out",
		MsgLoginRequired:    "Please log in: school-admin login",
		MsgSessionExpired:   "Session expired, please log in again: school-admin login",
		MsgValidationFailed: "The form has errors",
		MsgPrintBlocked:     "Printing is not available here, document saved to {0}",
		MsgDocumentSaved:    "Document saved to {0}",
		MsgPreviewReady:     "Preview available at {0}",
		MsgInvoiceSent:      "Invoice {0} sent to {1}",
		MsgPartialData:      "Partial data: {0}",
		MsgNoData:           "No data",
		MsgDeleteConfirm:    "Delete {0} #{1}? (y/N): ",
		MsgDeleteCancelled:  "Delete cancelled",
		MsgRegistered:       "Registration confirmed: {0}",
		MsgResendBlocked:    "Invoice {0} was just sent, retry in {1} (or use --force)",
		MsgBrowserBlocked:   "Could not open a browser, open {0} manually",

		NounStudent:  "Student",
		NounClass:    "Class",
		NounLevel:    "Level",
		NounFamily:   "Family",
		NounParent:   "Parent",
		NounFee:      "Fee",
		NounPayment:  "Payment",
		NounInvoice:  "Invoice",
		NounDocument: "Document",
		NounGrade:    "Grade",
		NounSubject:  "Subject",

		MsgInvalidPersonName:   "{0} may only contain letters, spaces, apostrophes or hyphens",
		MsgInvalidPhone:        "{0} must be a valid phone number",
		MsgInvalidAcademicYear: "{0} must be a school year formatted YYYY-YYYY",
	},
}
