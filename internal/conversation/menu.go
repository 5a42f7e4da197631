package conversation

// Menu labels, one keyboard row each
const (
	LabelCreateEmail    = "📧 إنشاء إيميل"
	LabelFetchOTP       = "🔐 جلب OTP"
	LabelAllMessages    = "📨 كل الرسائل من إيميل"
	LabelListEmails     = "📬 كل الإيميلات"
	LabelSearchMessages = "🔍 البحث عن رسائل إيميل"
)

// MenuLabels is the main keyboard in display order
var MenuLabels = []string{
	LabelCreateEmail,
	LabelFetchOTP,
	LabelAllMessages,
	LabelListEmails,
	LabelSearchMessages,
}

const (
	textWelcome        = "👋 أهلاً بك!\nاختر خدمة من القائمة 👇"
	textChooseFromMenu = "⚠️ اختر خيارًا من القائمة:"

	textCreated        = "✅ تم إنشاء الإيميل بنجاح:\n`%s`"
	textNoAddress      = "❌ لم يتم استلام إيميل صالح من الخادم."
	textCreateError    = "❌ خطأ أثناء إنشاء الإيميل"
	textNoActiveEmail  = "⚠️ لا يوجد إيميل نشط. أنشئ إيميل أولًا."
	textNoEmailsYet    = "📭 لم تُنشئ أي إيميلات بعد."
	textEmailsHeader   = "📬 *الإيميلات التي أنشأتها:*\n\n"
	textEmailsLine     = "%d. `%s`%s\n"
	textActiveSuffix   = " (نشط)"
	textSearchPrompt   = "✉️ أرسل الإيميل الذي تريد جلب رسائله:"
	textInvalidSearch  = "❌ يبدو أن هذا ليس إيميلًا صالحًا. أعد المحاولة:"
	textOTP            = "🔐 *OTP جديد:*\n`%s`"
	textVerifyLink     = "🔗 *رابط تحقق:*\n%s"
	textUnknownResult  = "📦 *نتيجة غير معروفة:*\n`%s`"
	textNothingNew     = "❌ لم يتم العثور على OTP أو رابط جديد."
	textOTPError       = "❌ خطأ في جلب OTP"
	textNoMessages     = "📭 لا توجد رسائل."
	textNoMessagesFor  = "📭 لا توجد رسائل لهذا الإيميل."
	textMessagesHeader = "📨 وُجدت %d رسالة للإيميل:\n`%s`"
	textMessageLabel   = "📄 *رسالة:*"
	textMessagesError  = "❌ خطأ في جلب الرسائل"
	textGiftFound      = "🎉 *تم العثور على هدية Discord Nitro!*"
	textGiftButton     = "🎮 افتح هدية Discord Nitro"
	textGiftNotFound   = "🔍 لم يتم العثور على هدية Discord Nitro في آخر %d رسائل."
)
