package bot

// Canned reply texts. WhatsApp renders *bold* markup natively.

const welcomeMessage = `👋 Hey there! Welcome to *Deepfake Detector Bot*!

I can help you detect deepfakes and AI-generated content.

*Please choose what you'd like to analyze:*

1️⃣ Send *1* for Image Analysis 🖼
2️⃣ Send *2* for Video Analysis 🎥
3️⃣ Send *3* for Text Analysis 📝

Just reply with the number of your choice!`

const helpMessage = `💡 *How to use this bot:*

*Step 1:* Choose your analysis type
• Send *1* for Image
• Send *2* for Video
• Send *3* for Text

*Step 2:* Send your content
• After choosing, send the image/video/text you want analyzed

*Supported formats:*
📸 Images: JPG, PNG, GIF, WebP
🎥 Videos: MP4, MOV, AVI, MKV, WebM
📝 Documents: PDF, DOCX, TXT, CSV

Type *start* or *hi* to begin again!`

const promptImage = `🖼 *Image Analysis selected!*

Please send the image you want me to check for AI generation or manipulation.`

const promptVideo = `🎥 *Video Analysis selected!*

Please send the video you want me to check for deepfakes.

⏳ Video analysis is thorough and can take up to two minutes.`

const promptText = `📝 *Text Analysis selected!*

Please send the text you want me to check for AI generation (at least 20 characters), or upload a document (PDF, DOCX, TXT, CSV).`

const unclearMessage = "🤔 I didn't understand that.\n\n" + welcomeMessage

const unsupportedTypeMessage = "⚠ I can't analyze that kind of message.\n\n" + helpMessage
