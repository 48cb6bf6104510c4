package entity

import "golang.org/x/text/language"

// Idiomas soportados para etiquetas de estado; el primero es el de respaldo.
var supportedLanguages = []language.Tag{language.Spanish, language.English}

var labelMatcher = language.NewMatcher(supportedLanguages)

type label struct{ es, en string }

// Tabla canónica de etiquetas por tipo de documento y código de estado.
var statusLabels = map[DocumentKind]map[string]label{
	KindDispatch: {
		string(DispatchDraft):      {"Borrador", "Draft"},
		string(DispatchPending):    {"Pendiente", "Pending"},
		string(DispatchApproved):   {"Aprobado", "Approved"},
		string(DispatchDispatched): {"Despachado", "Dispatched"},
		string(DispatchDelivered):  {"Entregado", "Delivered"},
		string(DispatchCancelled):  {"Cancelado", "Cancelled"},
	},
	KindDonation: {
		string(DonationDraft):     {"Borrador", "Draft"},
		string(DonationPending):   {"Pendiente", "Pending"},
		string(DonationApproved):  {"Aprobado", "Approved"},
		string(DonationReceived):  {"Recibido", "Received"},
		string(DonationCancelled): {"Cancelado", "Cancelled"},
	},
	KindTransfer: {
		string(TransferPending):   {"Pendiente", "Pending"},
		string(TransferApproved):  {"Aprobado", "Approved"},
		string(TransferInTransit): {"En tránsito", "In transit"},
		string(TransferReceived):  {"Recibido", "Received"},
		string(TransferCancelled): {"Cancelado", "Cancelled"},
	},
}

// MatchLanguage elige el idioma de etiquetas a partir de un header Accept-Language.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supportedLanguages[0]
	}
	_, idx, conf := labelMatcher.Match(tags...)
	if conf == language.No {
		return supportedLanguages[0]
	}
	return supportedLanguages[idx]
}

// StatusLabel devuelve la etiqueta legible del estado; si el código no existe devuelve el código.
func StatusLabel(kind DocumentKind, status string, lang language.Tag) string {
	l, ok := statusLabels[kind][status]
	if !ok {
		return status
	}
	if lang == language.English {
		return l.en
	}
	return l.es
}
