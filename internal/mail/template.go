package mail

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
    body {
        font-family: 'Segoe UI', 'Apple SD Gothic Neo', '맑은 고딕', sans-serif;
        line-height: 1.8;
        color: #333;
        max-width: 900px;
        margin: 0 auto;
        padding: 20px;
        background-color: #f8f9fa;
    }
    .container {
        background-color: #fff;
        padding: 30px;
        border-radius: 12px;
        box-shadow: 0 2px 8px rgba(0,0,0,0.1);
    }
    h1 {
        color: #1a73e8;
        border-bottom: 3px solid #1a73e8;
        padding-bottom: 12px;
        font-size: 24px;
    }
    h2 {
        color: #333;
        margin-top: 30px;
        padding-bottom: 8px;
        border-bottom: 1px solid #e0e0e0;
    }
    h3 {
        color: #555;
        margin-top: 20px;
    }
    h4 {
        color: #1a73e8;
        margin-top: 15px;
    }
    table {
        border-collapse: collapse;
        width: 100%;
        margin: 15px 0;
    }
    th, td {
        border: 1px solid #ddd;
        padding: 10px 14px;
        text-align: left;
    }
    th {
        background-color: #1a73e8;
        color: white;
        font-weight: 600;
    }
    tr:nth-child(even) {
        background-color: #f2f6fc;
    }
    blockquote {
        border-left: 4px solid #1a73e8;
        margin: 10px 0;
        padding: 8px 16px;
        background-color: #f8f9fa;
        color: #555;
        font-size: 14px;
    }
    a {
        color: #1a73e8;
        text-decoration: none;
    }
    a:hover {
        text-decoration: underline;
    }
    hr {
        border: none;
        border-top: 1px solid #e0e0e0;
        margin: 20px 0;
    }
    strong {
        color: #333;
    }
    .footer {
        margin-top: 30px;
        padding-top: 15px;
        border-top: 1px solid #e0e0e0;
        color: #888;
        font-size: 12px;
    }
</style>
</head>
<body>
<div class="container">
{content}
</div>
<div class="footer">
    <p>이 이메일은 광고업계 트렌드 분석 시스템에서 자동 발송되었습니다.</p>
</div>
</body>
</html>
`
