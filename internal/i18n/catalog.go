package i18n

var catalog = map[string]Texts{
	"en": {
		StartTitle:        "Driving detected",
		StartMessage:      "Is a child riding with you?",
		EndTitle:          "Check the back seat!",
		EndMessage:        "Make sure no child is left in the car.",
		EmergencyTitle:    "URGENT: check your car now!",
		EmergencyMessage:  "You have not confirmed that the car is empty.",
		PermissionTitle:   "Reminders may be late",
		PermissionMessage: "Exact alarms are off, so reminders can arrive up to a minute late. Set alarms.exact to true to fix this.",
		ActionYes:         "Yes",
		ActionNo:          "No",
		ActionConfirm:     "I checked, the car is empty",
		SessionDenied:     "No child on this trip. Reminders are off until the next drive.",
	},
	"es": {
		StartTitle:        "Conducción detectada",
		StartMessage:      "¿Viaja un niño contigo?",
		EndTitle:          "¡Revisa el asiento trasero!",
		EndMessage:        "Asegúrate de que ningún niño quede en el coche.",
		EmergencyTitle:    "URGENTE: ¡revisa tu coche ahora!",
		EmergencyMessage:  "No has confirmado que el coche está vacío.",
		PermissionTitle:   "Los recordatorios pueden llegar tarde",
		PermissionMessage: "Las alarmas exactas están desactivadas; los recordatorios pueden llegar hasta un minuto tarde. Activa alarms.exact para corregirlo.",
		ActionYes:         "Sí",
		ActionNo:          "No",
		ActionConfirm:     "Lo revisé, el coche está vacío",
		SessionDenied:     "Sin niños en este viaje. Recordatorios desactivados hasta el próximo viaje.",
	},
	"he": {
		StartTitle:        "זוהתה נסיעה",
		StartMessage:      "האם ילד נוסע איתך?",
		EndTitle:          "בדקו את המושב האחורי!",
		EndMessage:        "ודאו שאף ילד לא נשאר ברכב.",
		EmergencyTitle:    "דחוף: בדקו את הרכב עכשיו!",
		EmergencyMessage:  "לא אישרתם שהרכב ריק.",
		PermissionTitle:   "תזכורות עלולות להתעכב",
		PermissionMessage: "התראות מדויקות כבויות ולכן תזכורות עלולות להגיע באיחור של עד דקה. הגדירו alarms.exact ל-true.",
		ActionYes:         "כן",
		ActionNo:          "לא",
		ActionConfirm:     "בדקתי, הרכב ריק",
		SessionDenied:     "אין ילד בנסיעה הזו. התזכורות כבויות עד הנסיעה הבאה.",
		rtl:               true,
	},
	"ar": {
		StartTitle:        "تم اكتشاف القيادة",
		StartMessage:      "هل يرافقك طفل؟",
		EndTitle:          "تحقق من المقعد الخلفي!",
		EndMessage:        "تأكد من عدم ترك أي طفل في السيارة.",
		EmergencyTitle:    "عاجل: تحقق من سيارتك الآن!",
		EmergencyMessage:  "لم تؤكد أن السيارة فارغة.",
		PermissionTitle:   "قد تتأخر التذكيرات",
		PermissionMessage: "المنبهات الدقيقة معطلة، لذا قد تتأخر التذكيرات حتى دقيقة. اضبط alarms.exact على true.",
		ActionYes:         "نعم",
		ActionNo:          "لا",
		ActionConfirm:     "تحققت، السيارة فارغة",
		SessionDenied:     "لا يوجد طفل في هذه الرحلة. التذكيرات متوقفة حتى القيادة التالية.",
		rtl:               true,
	},
	"ru": {
		StartTitle:        "Обнаружена поездка",
		StartMessage:      "С вами едет ребёнок?",
		EndTitle:          "Проверьте заднее сиденье!",
		EndMessage:        "Убедитесь, что в машине не остался ребёнок.",
		EmergencyTitle:    "СРОЧНО: проверьте машину!",
		EmergencyMessage:  "Вы не подтвердили, что машина пуста.",
		PermissionTitle:   "Напоминания могут опаздывать",
		PermissionMessage: "Точные будильники выключены, напоминания могут опаздывать до минуты. Установите alarms.exact в true.",
		ActionYes:         "Да",
		ActionNo:          "Нет",
		ActionConfirm:     "Проверил(а), машина пуста",
		SessionDenied:     "В этой поездке ребёнка нет. Напоминания выключены до следующей поездки.",
	},
}
